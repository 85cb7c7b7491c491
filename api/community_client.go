package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// BodyKind names one of a community's administrative bodies.
type BodyKind string

const (
	FeastCommittee         BodyKind = "feast-committee"
	HolyDaysCommittee      BodyKind = "holy-days-committee"
	LocalSpiritualAssembly BodyKind = "local-spiritual-assembly"
)

// BodyKinds lists every kind in display order.
var BodyKinds = []BodyKind{LocalSpiritualAssembly, FeastCommittee, HolyDaysCommittee}

// the community detail routes use their own spelling of each kind
var communityBodySegments = map[BodyKind]string{
	FeastCommittee:         "feastcommittee",
	HolyDaysCommittee:      "holydayscommittee",
	LocalSpiritualAssembly: "lsa",
}

var bodyKindAliases = map[string]BodyKind{
	"lsa":       LocalSpiritualAssembly,
	"assembly":  LocalSpiritualAssembly,
	"feast":     FeastCommittee,
	"holy-days": HolyDaysCommittee,
}

// ParseBodyKind accepts a kind or one of its short names ("lsa", "feast",
// "holy-days").
func ParseBodyKind(s string) (BodyKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := communityBodySegments[BodyKind(s)]; ok {
		return BodyKind(s), nil
	}
	if kind, ok := bodyKindAliases[s]; ok {
		return kind, nil
	}
	return "", errors.Errorf("unknown body %q", s)
}

// Community fetches a community's detail record.
func (c *Client) Community(ctx context.Context, ts oauth2.TokenSource, communityID string) (*Community, error) {
	resp := &itemResponse[Community]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/community/" + pathEscape(communityID),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// CommunityBody fetches one of a community's bodies.
func (c *Client) CommunityBody(ctx context.Context, ts oauth2.TokenSource, communityID string, kind BodyKind) (*Body, error) {
	segment, ok := communityBodySegments[kind]
	if !ok {
		return nil, errors.Errorf("[api.Client.CommunityBody] unknown body %q", kind)
	}
	resp := &itemResponse[Body]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/community/" + pathEscape(communityID, segment),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// Bodies lists every body of kind visible to the caller.
func (c *Client) Bodies(ctx context.Context, ts oauth2.TokenSource, kind BodyKind) ([]Body, error) {
	if _, ok := communityBodySegments[kind]; !ok {
		return nil, errors.Errorf("[api.Client.Bodies] unknown body %q", kind)
	}
	resp := &listResponse[Body]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/bodies/" + pathEscape(string(kind)),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// IsBodyMember reports whether userID sits on the community's body of kind.
func (c *Client) IsBodyMember(ctx context.Context, ts oauth2.TokenSource, kind BodyKind, communityID, userID string) (bool, error) {
	if _, ok := communityBodySegments[kind]; !ok {
		return false, errors.Errorf("[api.Client.IsBodyMember] unknown body %q", kind)
	}
	resp := &membershipResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/bodies/" + pathEscape(string(kind), communityID, userID, "is-member"),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return false, err
	}
	return *resp.IsMember, nil
}

// membershipResponse accepts a bare boolean, {"isMember": bool} or
// {"data": bool}.
type membershipResponse struct {
	IsMember *bool
}

func (r *membershipResponse) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		return json.Unmarshal(trimmed, &r.IsMember)
	}
	var envelope struct {
		IsMember *bool `json:"isMember"`
		Data     *bool `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	r.IsMember = envelope.IsMember
	if r.IsMember == nil {
		r.IsMember = envelope.Data
	}
	return nil
}

func (r *membershipResponse) validate() error {
	if r.IsMember == nil {
		return errors.New(`expected a boolean or an "isMember" field`)
	}
	return nil
}
