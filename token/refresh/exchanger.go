package refresh

import (
	"context"

	"golang.org/x/oauth2"
)

// Exchanger trades a refresh token for a new access/refresh token pair at the
// backend. The returned token carries the rotated refresh token, or an empty
// RefreshToken when the backend didn't rotate it.
type Exchanger interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// ExchangerFunc adapts a function to Exchanger.
type ExchangerFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

func (f ExchangerFunc) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return f(ctx, refreshToken)
}
