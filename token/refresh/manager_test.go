package refresh_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/token/refresh"
	"github.com/jrsteele09/community-client/token/refresh/refreshfake"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, fake *refreshfake.FakeExchanger) *refresh.Manager {
	t.Helper()
	m, err := refresh.NewManager(fake)
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresExchanger(t *testing.T) {
	_, err := refresh.NewManager(nil)
	require.Error(t, err)
}

func TestRefresh_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	access, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"exp": exp.Unix()}).SignedString([]byte("1234"))
	require.NoError(t, err)

	fake := refreshfake.NewFakeExchanger(refreshfake.Result{AccessToken: access, NewRefreshToken: "R2"})
	tok, err := newManager(t, fake).Refresh(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, access, tok.AccessToken)
	require.Equal(t, "R2", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.True(t, tok.Expiry.Equal(exp))
	require.Equal(t, []string{"R1"}, fake.Calls())
}

func TestRefresh_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	fake := refreshfake.NewFakeExchanger(refreshfake.Result{AccessToken: "A2"})
	tok, err := newManager(t, fake).Refresh(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, "R1", tok.RefreshToken)
}

func TestRefresh_Errors(t *testing.T) {
	t.Run("no refresh token", func(t *testing.T) {
		fake := refreshfake.NewFakeExchanger()
		_, err := newManager(t, fake).Refresh(context.Background(), " ")
		require.ErrorIs(t, err, clienterrors.ErrNoRefreshToken)
		require.Zero(t, fake.CallCount())
	})

	t.Run("exchanger failure", func(t *testing.T) {
		boom := errors.New("401")
		fake := refreshfake.NewFakeExchanger(refreshfake.Result{Err: boom})
		_, err := newManager(t, fake).Refresh(context.Background(), "R1")
		require.ErrorIs(t, err, boom)
	})

	t.Run("empty access token", func(t *testing.T) {
		fake := refreshfake.NewFakeExchanger(refreshfake.Result{NewRefreshToken: "R2"})
		_, err := newManager(t, fake).Refresh(context.Background(), "R1")
		require.ErrorIs(t, err, clienterrors.ErrInvalidResponse)
	})
}

func TestRefresh_CoalescesConcurrentCallers(t *testing.T) {
	const callers = 8

	fake := refreshfake.NewFakeExchanger(refreshfake.Result{AccessToken: "A2", NewRefreshToken: "R2"})
	fake.Gate = make(chan struct{})
	m := newManager(t, fake)

	var started, done sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			tok, err := m.Refresh(context.Background(), "R1")
			errs[i] = err
			if tok != nil {
				results[i] = tok.AccessToken
			}
		}(i)
	}
	started.Wait()
	require.Eventually(t, func() bool { return fake.CallCount() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(fake.Gate)
	done.Wait()

	require.Equal(t, 1, fake.CallCount())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "A2", results[i])
	}
}

func TestRefresh_CallerCancellationDoesNotAbortExchange(t *testing.T) {
	fake := refreshfake.NewFakeExchanger(refreshfake.Result{AccessToken: "A2"})
	fake.Gate = make(chan struct{})
	m := newManager(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := m.Refresh(ctx, "R1")
		errCh <- err
	}()
	require.Eventually(t, func() bool { return fake.CallCount() == 1 }, time.Second, time.Millisecond)

	second := make(chan string, 1)
	go func() {
		tok, err := m.Refresh(context.Background(), "R1")
		if err == nil {
			second <- tok.AccessToken
		}
		close(second)
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	close(fake.Gate)
	require.Equal(t, "A2", <-second)
	require.Equal(t, 1, fake.CallCount())
}

func TestRefresh_ReusesLastExchangeForConsumedToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	access, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"exp": now.Add(time.Hour).Unix()}).SignedString([]byte("1234"))
	require.NoError(t, err)

	fake := refreshfake.NewFakeExchanger(
		refreshfake.Result{AccessToken: access, NewRefreshToken: "R2"},
		refreshfake.Result{Err: errors.New("refresh token reused")},
	)
	m, err := refresh.NewManager(fake, refresh.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)

	first, err := m.Refresh(context.Background(), "R1")
	require.NoError(t, err)

	again, err := m.Refresh(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, first.AccessToken, again.AccessToken)
	require.Equal(t, "R2", again.RefreshToken)
	require.Equal(t, 1, fake.CallCount())

	// Once the remembered access token has expired the exchange runs again.
	now = now.Add(2 * time.Hour)
	_, err = m.Refresh(context.Background(), "R1")
	require.Error(t, err)
	require.Equal(t, 2, fake.CallCount())
}
