package sessions_test

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/community-client/api"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/sessions"
	"github.com/jrsteele09/community-client/sessions/preloadfake"
	"github.com/jrsteele09/community-client/storage"
	"github.com/jrsteele09/community-client/storage/storefake"
	"github.com/jrsteele09/community-client/token/refresh"
	"github.com/jrsteele09/community-client/token/refresh/refreshfake"
	"github.com/jrsteele09/community-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const secretStr = "1234"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testFixture struct {
	store     *storefake.FakeStore
	exchanger *refreshfake.FakeExchanger
	preloader *preloadfake.FakePreloader
	registry  *prometheus.Registry
	manager   *sessions.Manager
}

func setupTestFixture(t *testing.T, results ...refreshfake.Result) *testFixture {
	t.Helper()
	f := &testFixture{
		store:     storefake.NewFakeStore(),
		exchanger: refreshfake.NewFakeExchanger(results...),
		preloader: preloadfake.NewFakePreloader(),
		registry:  prometheus.NewRegistry(),
	}
	f.manager = f.newManager(t, f.exchanger)
	return f
}

// newManager builds another manager over the fixture's store and registry.
func (f *testFixture) newManager(t *testing.T, exchanger refresh.Exchanger) *sessions.Manager {
	t.Helper()
	m, err := sessions.NewManager(f.store, exchanger,
		sessions.WithNowTime(func() time.Time { return fixedNow }),
		sessions.WithPreloader(f.preloader),
		sessions.WithMetrics(f.registry),
	)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func (f *testFixture) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwtlib.MapClaims{"exp": exp.Unix(), "sub": "u-1", "jti": uuid.New().String()}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secretStr))
	require.NoError(t, err)
	return token
}

func tokenFor(t *testing.T, subject string) string {
	t.Helper()
	claims := jwtlib.MapClaims{"exp": fixedNow.Add(time.Hour).Unix(), "sub": subject}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secretStr))
	require.NoError(t, err)
	return token
}

func freshToken(t *testing.T) string {
	return tokenExpiringAt(t, fixedNow.Add(time.Hour))
}

func staleToken(t *testing.T) string {
	return tokenExpiringAt(t, fixedNow.Add(-time.Second))
}

func testUser() *users.User {
	return &users.User{
		ID:             "u-1",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		Occupation:     "mathematician",
		Roles:          []string{"member"},
		Skills:         []string{"analysis", "poetry"},
		ProfilePicture: "https://cdn.example.com/ada.png",
		BahaiID:        "B-1815",
		Birthday:       "1815-12-10",
		Community:      &users.Community{ID: "c-1", Name: "London"},
	}
}

func TestNewManager_RequiresCollaborators(t *testing.T) {
	_, err := sessions.NewManager(nil, refreshfake.NewFakeExchanger())
	require.Error(t, err)

	_, err = sessions.NewManager(storefake.NewFakeStore(), nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.False(t, f.manager.IsLoggedIn())
	require.Equal(t, sessions.StatusLoggedOut, f.manager.Status())

	require.NoError(t, f.manager.Login(ctx, testUser(), "tokA", "refA"))

	require.True(t, f.manager.IsLoggedIn())
	snap := f.manager.Snapshot()
	require.Equal(t, sessions.StatusValid, snap.Status)
	require.Equal(t, "tokA", snap.AccessToken)
	require.Equal(t, "c-1", snap.CommunityID)
	require.Equal(t, testUser(), snap.User)

	require.Equal(t, "tokA", f.store.Value(storage.KeyAuthToken))
	require.Equal(t, "refA", f.store.Value(storage.KeyRefreshToken))
	require.Equal(t, "c-1", f.store.Value(storage.KeyCommunityID))
	stored, err := users.Unmarshal(f.store.Value(storage.KeyUser))
	require.NoError(t, err)
	require.Equal(t, testUser(), stored)

	// An opaque token has no readable exp, so nothing is preloaded for it.
	require.Zero(t, f.preloader.CallCount())
}

func TestLogin_RequiresAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	require.Error(t, f.manager.Login(context.Background(), testUser(), " ", "refA"))
	require.False(t, f.manager.IsLoggedIn())
	require.Zero(t, f.store.Len())
}

func TestLogin_UserWithoutCommunity(t *testing.T) {
	f := setupTestFixture(t)
	user := testUser()
	user.Community = nil

	require.NoError(t, f.manager.Login(context.Background(), user, "tokA", ""))
	require.Empty(t, f.manager.Snapshot().CommunityID)
	require.False(t, f.store.Has(storage.KeyCommunityID))
	require.False(t, f.store.Has(storage.KeyRefreshToken))
}

func TestLogin_PersistenceFailuresAreLoggedNotReturned(t *testing.T) {
	f := setupTestFixture(t)
	f.store.FailSets(storage.KeyAuthToken, storage.KeyUser)

	require.NoError(t, f.manager.Login(context.Background(), testUser(), "tokA", "refA"))

	require.True(t, f.manager.IsLoggedIn())
	require.False(t, f.store.Has(storage.KeyAuthToken))
	require.Equal(t, "refA", f.store.Value(storage.KeyRefreshToken))
	require.Equal(t, "c-1", f.store.Value(storage.KeyCommunityID))
	require.Equal(t, float64(1), f.counter(t, "community_session_persist_failures_total", map[string]string{"key": storage.KeyAuthToken}))
	require.Equal(t, float64(1), f.counter(t, "community_session_persist_failures_total", map[string]string{"key": storage.KeyUser}))
}

func TestLogin_CallerCannotMutateSession(t *testing.T) {
	f := setupTestFixture(t)
	user := testUser()
	require.NoError(t, f.manager.Login(context.Background(), user, "tokA", "refA"))

	user.FirstName = "Changed"
	snap := f.manager.Snapshot()
	snap.User.Community.ID = "elsewhere"

	require.Equal(t, "Ada", f.manager.Snapshot().User.FirstName)
	require.Equal(t, "c-1", f.manager.Snapshot().User.CommunityID())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.manager.Login(ctx, testUser(), "tokA", "refA"))
	for _, key := range storage.CacheKeys {
		require.NoError(t, f.store.Set(ctx, key, "[]"))
	}

	f.manager.Logout(ctx)

	require.False(t, f.manager.IsLoggedIn())
	for _, key := range storage.AllKeys {
		require.False(t, f.store.Has(key), key)
	}
	require.Equal(t, sessions.Snapshot{Status: sessions.StatusLoggedOut, Generation: f.manager.Snapshot().Generation}, f.manager.Snapshot())

	// Idempotent.
	f.manager.Logout(ctx)
	require.False(t, f.manager.IsLoggedIn())
	require.Zero(t, f.store.Len())
}

func TestIsTokenExpired(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.manager.IsTokenExpired(staleToken(t)))
	require.False(t, f.manager.IsTokenExpired(freshToken(t)))
	require.True(t, f.manager.IsTokenExpired("header.payload"))
	require.True(t, f.manager.IsTokenExpired("aaa.!!!.ccc"))
	require.True(t, f.manager.IsTokenExpired(""))
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing persisted", func(t *testing.T) {
		f := setupTestFixture(t)
		require.Equal(t, sessions.StatusLoggedOut, f.manager.Restore(ctx))
		require.False(t, f.manager.IsLoggedIn())
	})

	t.Run("unreadable token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Set(ctx, storage.KeyAuthToken, "tokA"))
		require.NoError(t, f.store.Set(ctx, storage.KeyRefreshToken, "refA"))

		require.Equal(t, sessions.StatusLoggedOut, f.manager.Restore(ctx))
		require.False(t, f.manager.IsLoggedIn())
		require.Zero(t, f.store.Len())
	})

	t.Run("store read failure", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Set(ctx, storage.KeyAuthToken, freshToken(t)))
		f.store.FailGets(storage.KeyAuthToken)

		require.Equal(t, sessions.StatusLoggedOut, f.manager.Restore(ctx))
		require.False(t, f.manager.IsLoggedIn())
	})

	t.Run("unexpired token", func(t *testing.T) {
		f := setupTestFixture(t)
		token := freshToken(t)
		seed := f.newManager(t, f.exchanger)
		require.NoError(t, seed.Login(ctx, testUser(), token, "refA"))

		require.Equal(t, sessions.StatusValid, f.manager.Restore(ctx))
		snap := f.manager.Snapshot()
		require.Equal(t, token, snap.AccessToken)
		require.Equal(t, "c-1", snap.CommunityID)
		require.Equal(t, testUser(), snap.User)
	})

	t.Run("expired token", func(t *testing.T) {
		f := setupTestFixture(t)
		token := staleToken(t)
		require.NoError(t, f.store.Set(ctx, storage.KeyAuthToken, token))
		require.NoError(t, f.store.Set(ctx, storage.KeyRefreshToken, "refA"))
		userJSON, err := testUser().Marshal()
		require.NoError(t, err)
		require.NoError(t, f.store.Set(ctx, storage.KeyUser, userJSON))

		require.Equal(t, sessions.StatusExpired, f.manager.Restore(ctx))
		require.True(t, f.manager.IsLoggedIn())
		// communityId falls back to the user record when not persisted.
		require.Equal(t, "c-1", f.manager.Snapshot().CommunityID)
		require.Zero(t, f.preloader.CallCount())
		require.Zero(t, f.exchanger.CallCount())
	})
}

func TestLoadCachedData_RoundTripsUser(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.manager.Login(ctx, testUser(), "tokA", "refA"))

	restored := f.newManager(t, f.exchanger)
	restored.LoadCachedData(ctx)

	require.Equal(t, testUser(), restored.Snapshot().User)
	require.Equal(t, "c-1", restored.Snapshot().CommunityID)
}

func TestLoadCachedData_CommunityFromUserRecord(t *testing.T) {
	ctx := context.Background()
	for name, record := range map[string]string{
		"id":  `{"id":"u-1","firstName":"Ada","community":{"id":"c-1","name":"London"}}`,
		"_id": `{"id":"u-1","firstName":"Ada","community":{"_id":"c-1","name":"London"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := setupTestFixture(t)
			require.NoError(t, f.store.Set(ctx, storage.KeyAuthToken, staleToken(t)))
			require.NoError(t, f.store.Set(ctx, storage.KeyUser, record))

			f.manager.LoadCachedData(ctx)
			require.Equal(t, "c-1", f.manager.Snapshot().CommunityID)

			restored := f.newManager(t, f.exchanger)
			require.Equal(t, sessions.StatusExpired, restored.Restore(ctx))
			require.Equal(t, "c-1", restored.Snapshot().CommunityID)
		})
	}
}

func TestLoadCachedData_ReadsCollections(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, storage.KeyUserPosts, `[{"_id":"p-1","title":"Hello"}]`))
	require.NoError(t, f.store.Set(ctx, storage.KeyUserEvents, `not json`))

	f.manager.LoadCachedData(ctx)

	snap := f.manager.Snapshot()
	require.Len(t, snap.Posts, 1)
	require.Equal(t, "Hello", snap.Posts[0].Title)
	require.Nil(t, snap.Events)
	require.Nil(t, snap.User)
}

func TestValidToken(t *testing.T) {
	ctx := context.Background()

	t.Run("not logged in", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.manager.ValidToken(ctx)
		require.ErrorIs(t, err, clienterrors.ErrNotLoggedIn)
	})

	t.Run("unexpired token is returned as is", func(t *testing.T) {
		f := setupTestFixture(t)
		token := freshToken(t)
		require.NoError(t, f.manager.Login(ctx, testUser(), token, "refA"))

		got, err := f.manager.ValidToken(ctx)
		require.NoError(t, err)
		require.Equal(t, token, got)
		require.Zero(t, f.exchanger.CallCount())
	})

	t.Run("expired token is refreshed", func(t *testing.T) {
		next := freshToken(t)
		f := setupTestFixture(t, refreshfake.Result{AccessToken: next, NewRefreshToken: "refB"})
		require.NoError(t, f.manager.Login(ctx, testUser(), staleToken(t), "refA"))

		got, err := f.manager.ValidToken(ctx)
		require.NoError(t, err)
		require.Equal(t, next, got)
		require.Equal(t, []string{"refA"}, f.exchanger.Calls())
		require.Equal(t, sessions.StatusValid, f.manager.Status())
		require.Equal(t, next, f.store.Value(storage.KeyAuthToken))
		require.Equal(t, "refB", f.store.Value(storage.KeyRefreshToken))
	})

	t.Run("failed refresh logs out", func(t *testing.T) {
		f := setupTestFixture(t, refreshfake.Result{Err: context.DeadlineExceeded})
		require.NoError(t, f.manager.Login(ctx, testUser(), staleToken(t), "refA"))

		_, err := f.manager.ValidToken(ctx)
		require.ErrorIs(t, err, clienterrors.ErrSessionInvalid)
		require.False(t, f.manager.IsLoggedIn())
		require.Zero(t, f.store.Len())
	})
}

func TestToken(t *testing.T) {
	f := setupTestFixture(t)
	exp := fixedNow.Add(time.Hour)
	token := tokenExpiringAt(t, exp)
	require.NoError(t, f.manager.Login(context.Background(), testUser(), token, "refA"))

	tok, err := f.manager.Token()
	require.NoError(t, err)
	require.Equal(t, token, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Empty(t, tok.RefreshToken)
	require.True(t, tok.Expiry.Equal(exp.Truncate(time.Second)))
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "logged_out", sessions.StatusLoggedOut.String())
	require.Equal(t, "refreshing", sessions.StatusRefreshing.String())
	require.Equal(t, "unknown", sessions.Status(42).String())
	require.True(t, sessions.StatusExpired.HasToken())
	require.False(t, sessions.StatusInvalid.HasToken())
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("not logged in", func(t *testing.T) {
		f := setupTestFixture(t)
		require.ErrorIs(t, f.manager.UpdateUser(ctx, testUser()), clienterrors.ErrNotLoggedIn)
		require.Zero(t, f.store.Len())
	})

	t.Run("same community", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.manager.Login(ctx, testUser(), "tokA", "refA"))
		gen := f.manager.Snapshot().Generation

		updated := testUser()
		updated.Occupation = "engineer"
		require.NoError(t, f.manager.UpdateUser(ctx, updated))

		snap := f.manager.Snapshot()
		require.Equal(t, "engineer", snap.User.Occupation)
		require.Equal(t, gen, snap.Generation)
		stored, err := users.Unmarshal(f.store.Value(storage.KeyUser))
		require.NoError(t, err)
		require.Equal(t, updated, stored)
	})

	t.Run("moved community reloads the feed", func(t *testing.T) {
		f := setupTestFixture(t)
		f.preloader.Posts = []api.Post{{ID: "p-1"}}
		require.NoError(t, f.manager.Login(ctx, testUser(), freshToken(t), "refA"))
		require.Eventually(t, func() bool { return f.preloader.CallCount() == 3 }, time.Second, time.Millisecond)

		moved := testUser()
		moved.Community = &users.Community{ID: "c-2"}
		require.NoError(t, f.manager.UpdateUser(ctx, moved))

		require.Equal(t, "c-2", f.manager.Snapshot().CommunityID)
		require.Equal(t, "c-2", f.store.Value(storage.KeyCommunityID))
		require.Eventually(t, func() bool {
			for _, call := range f.preloader.Calls() {
				if call.CommunityID == "c-2" {
					return true
				}
			}
			return false
		}, time.Second, time.Millisecond)
	})
}
