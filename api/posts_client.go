package api

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// ExploreFeed returns the cross-community feed. ts may be nil.
func (c *Client) ExploreFeed(ctx context.Context, ts oauth2.TokenSource) ([]Post, error) {
	resp := &listResponse[Post]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/posts/explore-feed",
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CommunityFeed returns the feed of one community.
func (c *Client) CommunityFeed(ctx context.Context, ts oauth2.TokenSource, communityID string) ([]Post, error) {
	resp := &listResponse[Post]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/posts/community-feed/" + pathEscape(communityID),
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// LikePost likes a post on behalf of the current user.
func (c *Client) LikePost(ctx context.Context, ts oauth2.TokenSource, postID string) error {
	return c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPost,
		path:        "api/posts/" + pathEscape(postID, "like"),
		tokenSource: ts,
	})
}

// CommentOnPost adds a comment to a post.
func (c *Client) CommentOnPost(ctx context.Context, ts oauth2.TokenSource, postID, comment string) error {
	return c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPost,
		path:        "api/posts/" + pathEscape(postID, "comment"),
		tokenSource: ts,
		reqBodyObj:  commentRequest{Comment: comment},
	})
}

// CreatePost publishes a post to a community.
func (c *Client) CreatePost(ctx context.Context, ts oauth2.TokenSource, req CreatePostRequest) (*Post, error) {
	if req.Media == nil {
		req.Media = []string{}
	}
	resp := &itemResponse[Post]{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPost,
		path:        "api/posts/create",
		tokenSource: ts,
		reqBodyObj:  req,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}
