package api

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Events lists upcoming events.
func (c *Client) Events(ctx context.Context, ts oauth2.TokenSource) ([]Event, error) {
	resp := &listResponse[Event]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/events",
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Event fetches one event.
func (c *Client) Event(ctx context.Context, ts oauth2.TokenSource, eventID string) (*Event, error) {
	resp := &itemResponse[Event]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/events/" + pathEscape(eventID),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// JoinEvent registers the current user as attending.
func (c *Client) JoinEvent(ctx context.Context, ts oauth2.TokenSource, eventID string) error {
	return c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPut,
		path:        "api/events/" + pathEscape(eventID, "join"),
		tokenSource: ts,
	})
}

// AddEventHosts adds hostIDs to the event's hosts and returns the updated event.
func (c *Client) AddEventHosts(ctx context.Context, ts oauth2.TokenSource, eventID string, hostIDs []string) (*Event, error) {
	resp := &itemResponse[Event]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPatch,
		path:        "api/events/" + pathEscape(eventID, "hosts"),
		tokenSource: ts,
		reqBodyObj:  map[string][]string{"hosts": hostIDs},
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}
