package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/community-client/users"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// User fetches another member's profile.
func (c *Client) User(ctx context.Context, ts oauth2.TokenSource, userID string) (*users.User, error) {
	resp := &userResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/users/getUser/" + pathEscape(userID),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Members lists the members of a community.
func (c *Client) Members(ctx context.Context, ts oauth2.TokenSource, communityID string) ([]users.User, error) {
	resp := &userListResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/users/getAllMembers/" + pathEscape(communityID),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// DiscoverUsers lists members the backend suggests connecting with.
func (c *Client) DiscoverUsers(ctx context.Context, ts oauth2.TokenSource) ([]users.User, error) {
	resp := &userListResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/users/discover",
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// userListResponse accepts a bare array or an object carrying the array under
// "data", "users", "members" or "memberDetails".
type userListResponse struct {
	Users []users.User
}

func (r *userListResponse) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Users)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	for _, key := range []string{"data", "users", "members", "memberDetails"} {
		raw, ok := envelope[key]
		if ok && len(raw) > 0 && raw[0] == '[' {
			return json.Unmarshal(raw, &r.Users)
		}
	}
	return errors.New("expected an array of users")
}

func (r *userListResponse) validate() error {
	for i, u := range r.Users {
		if u.ID == "" {
			return fmt.Errorf("user %d has no id", i)
		}
	}
	if r.Users == nil {
		r.Users = []users.User{}
	}
	return nil
}
