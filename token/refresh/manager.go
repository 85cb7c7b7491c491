package refresh

import (
	"context"
	"strings"
	"sync"
	"time"

	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/token/jwt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Manager coalesces refresh attempts: callers that ask to refresh the same
// refresh token while an exchange is in flight wait for that exchange and
// share its result instead of issuing their own.
//
// The last successful exchange is remembered: asking again with the refresh
// token it consumed returns the same pair while its access token is unexpired,
// so a caller that read the session just before adoption doesn't spend a
// rotated token a second time.
type Manager struct {
	exchanger Exchanger
	group     singleflight.Group
	logger    zerolog.Logger
	nowTime   func() time.Time

	lastLock     sync.Mutex
	lastConsumed string
	lastToken    *oauth2.Token
}

type ManagerOption func(*Manager)

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime overrides the clock used to decide whether the remembered
// exchange is still usable.
func WithNowTime(nowTime func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowTime
	}
}

// NewManager creates a new refresh coordinator
func NewManager(exchanger Exchanger, options ...ManagerOption) (*Manager, error) {
	if exchanger == nil {
		return nil, errors.New("[refresh.NewManager] exchanger is required")
	}
	m := &Manager{
		exchanger: exchanger,
		logger:    zerolog.Nop(),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Refresh exchanges refreshToken for a new pair. The exchange itself is not
// bound to the first caller's cancellation, so one caller giving up doesn't
// fail the others; each caller stops waiting when its own ctx is done.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, clienterrors.ErrNoRefreshToken
	}

	if tok := m.remembered(refreshToken); tok != nil {
		m.logger.Debug().Msg("refresh token already exchanged, reusing result")
		return tok, nil
	}

	exchangeCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(refreshToken, func() (any, error) {
		return m.exchange(exchangeCtx, refreshToken)
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "[refresh.Manager.Refresh] waiting for exchange")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			m.logger.Debug().Msg("refresh result shared with concurrent callers")
		}
		tok := *res.Val.(*oauth2.Token)
		return &tok, nil
	}
}

func (m *Manager) exchange(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	tok, err := m.exchanger.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[refresh.Manager.exchange] exchanger.Refresh")
	}
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		return nil, errors.Wrap(clienterrors.ErrInvalidResponse, "[refresh.Manager.exchange] no access token returned")
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if exp, err := jwt.ExpiresAt(tok.AccessToken); err == nil {
		tok.Expiry = exp
	}

	m.lastLock.Lock()
	m.lastConsumed = refreshToken
	m.lastToken = tok
	m.lastLock.Unlock()
	return tok, nil
}

func (m *Manager) remembered(refreshToken string) *oauth2.Token {
	m.lastLock.Lock()
	defer m.lastLock.Unlock()
	if m.lastToken == nil || m.lastConsumed != refreshToken {
		return nil
	}
	if jwt.IsExpired(m.lastToken.AccessToken, m.nowTime()) {
		return nil
	}
	tok := *m.lastToken
	return &tok
}
