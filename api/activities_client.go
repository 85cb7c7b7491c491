package api

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Activities lists upcoming activities.
func (c *Client) Activities(ctx context.Context, ts oauth2.TokenSource) ([]Activity, error) {
	resp := &listResponse[Activity]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/activities",
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Activity fetches one activity.
func (c *Client) Activity(ctx context.Context, ts oauth2.TokenSource, activityID string) (*Activity, error) {
	resp := &itemResponse[Activity]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/activities/" + pathEscape(activityID),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}
