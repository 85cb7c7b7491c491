package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Notification is one entry of a member's notification feed.
type Notification struct {
	ID             string          `json:"_id"`
	Type           string          `json:"type,omitempty"`
	Actor          json.RawMessage `json:"actor,omitempty"`
	Target         json.RawMessage `json:"target,omitempty"`
	TargetType     string          `json:"targetType,omitempty"`
	Scope          string          `json:"scope,omitempty"`
	AdditionalData json.RawMessage `json:"additionalData,omitempty"`
	Read           bool            `json:"read,omitempty"`
	CreatedAt      string          `json:"createdAt,omitempty"`
}

func (n Notification) identity() string { return n.ID }

// Caption returns the human readable line the backend attaches, if any.
func (n Notification) Caption() string {
	var data struct {
		Caption string `json:"caption"`
	}
	if len(n.AdditionalData) == 0 || json.Unmarshal(n.AdditionalData, &data) != nil {
		return ""
	}
	return data.Caption
}

// Notifications lists userID's notifications, only those after since when it
// is non-zero.
func (c *Client) Notifications(ctx context.Context, ts oauth2.TokenSource, userID string, since time.Time) ([]Notification, error) {
	params := map[string]string{"userId": userID}
	if !since.IsZero() {
		params["since"] = since.UTC().Format(time.RFC3339)
	}
	resp := &listResponse[Notification]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/notifications",
		queryParams: params,
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, ts oauth2.TokenSource, notificationID string) error {
	return c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPut,
		path:        "api/notifications/" + pathEscape(notificationID, "mark-as-read"),
		tokenSource: ts,
	})
}

// MarkAllNotificationsRead marks every notification of userID as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, ts oauth2.TokenSource, userID string) error {
	return c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPatch,
		path:        "api/notifications/mark-as-read",
		tokenSource: ts,
		reqBodyObj:  map[string]string{"userId": userID},
	})
}
