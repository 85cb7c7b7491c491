package api

import (
	"context"
	"net/http"

	"github.com/jrsteele09/community-client/token/refresh"
	"github.com/jrsteele09/community-client/users"
	"golang.org/x/oauth2"
)

var _ refresh.Exchanger = (*Client)(nil)

// Login exchanges credentials for a user record and session tokens.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	resp := &AuthResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:     http.MethodPost,
		path:       "api/auth/login",
		reqBodyObj: req,
		respObj:    resp,
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// Register creates an account. The backend emails a verification code that
// is redeemed with Verify.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	resp := &MessageResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:     http.MethodPost,
		path:       "api/auth/register",
		reqBodyObj: req,
		respObj:    resp,
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// Verify redeems a verification code and returns session tokens.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*AuthResponse, error) {
	resp := &AuthResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:     http.MethodPost,
		path:       "api/auth/verify",
		reqBodyObj: req,
		respObj:    resp,
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// ForgotPassword asks the backend to send a password reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	resp := &MessageResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:     http.MethodPost,
		path:       "api/auth/forgot-password",
		reqBodyObj: forgotPasswordRequest{Email: email},
		respObj:    resp,
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// Refresh exchanges a refresh token for a new access token and, when the
// backend rotates it, a new refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	resp := &RefreshResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:     http.MethodPost,
		path:       "api/auth/refresh",
		reqBodyObj: refreshRequest{RefreshToken: refreshToken},
		respObj:    resp,
	}); err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.NewRefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// Me fetches the current user's record.
func (c *Client) Me(ctx context.Context, ts oauth2.TokenSource) (*users.User, error) {
	resp := &userResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodGet,
		path:        "api/auth/me",
		tokenSource: ts,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateMe replaces the current user's profile fields and returns the stored
// record.
func (c *Client) UpdateMe(ctx context.Context, ts oauth2.TokenSource, user *users.User) (*users.User, error) {
	resp := &userResponse{}
	if err := c.executeAPIRequest(ctx, apiRequest{
		method:      http.MethodPut,
		path:        "api/auth/me",
		tokenSource: ts,
		reqBodyObj:  user,
		respObj:     resp,
	}); err != nil {
		return nil, err
	}
	return resp.User, nil
}
