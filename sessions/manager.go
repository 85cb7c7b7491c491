package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/community-client/api"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/storage"
	"github.com/jrsteele09/community-client/token/jwt"
	"github.com/jrsteele09/community-client/token/refresh"
	"github.com/jrsteele09/community-client/users"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Manager)(nil)

// Manager owns the session: tokens, the user snapshot, the community id and
// the cached collections, in memory and in the Store. All mutation goes through
// its methods; consumers read Snapshots.
type Manager struct {
	store          storage.Store
	refresher      *refresh.Manager
	preloader      Preloader
	preloadTimeout time.Duration
	logger         zerolog.Logger
	nowTime        func() time.Time
	registerer     prometheus.Registerer
	metrics        *metrics

	// writeMu serialises operations that change the session, so each one's
	// memory update and persistence run as a unit relative to the others.
	writeMu sync.Mutex

	mu           sync.RWMutex
	status       Status
	accessToken  string
	refreshToken string
	user         *users.User
	communityID  string
	posts        []api.Post
	activities   []api.Activity
	events       []api.Event
	generation   uint64

	preloadCancel context.CancelFunc
	preloadDone   chan struct{}
	preloadWG     sync.WaitGroup

	subMu       sync.Mutex
	subscribers map[uint64]chan Snapshot
	nextSubID   uint64
	closed      bool
}

type ManagerOption func(*Manager)

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime overrides the clock used for expiry checks.
func WithNowTime(nowTime func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowTime
	}
}

// WithPreloader enables the dependent preload of posts, activities and events.
func WithPreloader(preloader Preloader) ManagerOption {
	return func(m *Manager) {
		m.preloader = preloader
	}
}

// WithPreloadTimeout bounds each preload round. Zero leaves it unbounded.
func WithPreloadTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.preloadTimeout = timeout
	}
}

// WithMetrics registers the session counters with reg.
func WithMetrics(reg prometheus.Registerer) ManagerOption {
	return func(m *Manager) {
		m.registerer = reg
	}
}

// NewManager creates a logged-out session manager. Call Restore to pick up a
// persisted session.
func NewManager(store storage.Store, exchanger refresh.Exchanger, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[sessions.NewManager] store is required")
	}
	if exchanger == nil {
		return nil, errors.New("[sessions.NewManager] exchanger is required")
	}

	m := &Manager{
		store:       store,
		logger:      zerolog.Nop(),
		nowTime:     time.Now,
		status:      StatusLoggedOut,
		subscribers: make(map[uint64]chan Snapshot),
	}
	for _, opt := range options {
		opt(m)
	}

	var err error
	if m.refresher, err = refresh.NewManager(exchanger,
		refresh.WithLogger(m.logger),
		refresh.WithNowTime(m.nowTime),
	); err != nil {
		return nil, errors.Wrap(err, "[sessions.NewManager]")
	}
	if m.metrics, err = newMetrics(m.registerer); err != nil {
		return nil, errors.Wrap(err, "[sessions.NewManager]")
	}
	return m, nil
}

// Restore reads the persisted session back. It resolves to StatusValid when
// the stored token decodes with a future exp, StatusExpired when the exp has
// passed (refreshed on next use), and StatusLoggedOut otherwise.
func (m *Manager) Restore(ctx context.Context) Status {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	m.status = StatusRestoring
	m.mu.Unlock()
	m.publish()

	accessToken := m.load(ctx, storage.KeyAuthToken)
	if accessToken == "" {
		m.clearLocked(ctx, StatusLoggedOut, false)
		return StatusLoggedOut
	}
	if _, err := jwt.DecodePayload(accessToken); err != nil {
		m.logger.Warn().Err(err).Msg("persisted access token is unreadable, clearing session")
		m.clearLocked(ctx, StatusLoggedOut, true)
		return StatusLoggedOut
	}

	status := StatusValid
	if jwt.IsExpired(accessToken, m.nowTime()) {
		status = StatusExpired
	}

	refreshToken := m.load(ctx, storage.KeyRefreshToken)
	user := m.loadUser(ctx)
	communityID := m.load(ctx, storage.KeyCommunityID)
	if communityID == "" {
		communityID = user.CommunityID()
	}
	cached := m.loadCollections(ctx)

	m.mu.Lock()
	m.status = status
	m.accessToken = accessToken
	m.refreshToken = refreshToken
	m.user = user
	m.communityID = communityID
	cached.assignLocked(m)
	m.generation++
	gen := m.generation
	m.mu.Unlock()
	m.publish()

	if status == StatusValid {
		m.startPreload(gen, accessToken, communityID)
	}
	return status
}

// Login adopts a freshly issued session. Persistence is best effort: failures
// are logged and counted, never returned. The only error is a blank access
// token.
func (m *Manager) Login(ctx context.Context, user *users.User, accessToken, refreshToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return errors.New("[sessions.Manager.Login] access token is required")
	}
	user = user.Clone()
	communityID := user.CommunityID()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	switched := m.isAccountSwitch(ctx, user, accessToken)

	m.mu.Lock()
	m.cancelPreloadLocked()
	m.status = StatusValid
	m.accessToken = accessToken
	m.refreshToken = refreshToken
	m.user = user
	m.communityID = communityID
	if switched {
		m.posts, m.activities, m.events = nil, nil, nil
	}
	m.generation++
	gen := m.generation
	m.mu.Unlock()
	m.publish()

	if switched {
		m.logger.Info().Msg("different account logged in, dropping cached collections")
		m.delete(ctx, storage.CacheKeys...)
	}

	m.persist(ctx, storage.KeyAuthToken, accessToken)
	m.persistOrDelete(ctx, storage.KeyRefreshToken, refreshToken)
	if userJSON, err := user.Marshal(); err != nil {
		m.logger.Error().Err(err).Msg("failed to serialise user")
	} else {
		m.persist(ctx, storage.KeyUser, userJSON)
	}
	m.persistOrDelete(ctx, storage.KeyCommunityID, communityID)

	if !jwt.IsExpired(accessToken, m.nowTime()) {
		m.startPreload(gen, accessToken, communityID)
	}
	return nil
}

// UpdateUser replaces the user snapshot of the current session, e.g. after a
// profile update. A changed community restarts the preload for the new feed.
func (m *Manager) UpdateUser(ctx context.Context, user *users.User) error {
	if user == nil {
		return errors.New("[sessions.Manager.UpdateUser] user is required")
	}
	user = user.Clone()
	communityID := user.CommunityID()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.accessToken == "" {
		m.mu.Unlock()
		return clienterrors.ErrNotLoggedIn
	}
	moved := communityID != m.communityID
	m.user = user
	m.communityID = communityID
	if moved {
		m.cancelPreloadLocked()
		m.posts = nil
		m.generation++
	}
	gen, accessToken := m.generation, m.accessToken
	m.mu.Unlock()
	m.publish()

	if userJSON, err := user.Marshal(); err != nil {
		m.logger.Error().Err(err).Msg("failed to serialise user")
	} else {
		m.persist(ctx, storage.KeyUser, userJSON)
	}
	m.persistOrDelete(ctx, storage.KeyCommunityID, communityID)

	if moved {
		m.delete(ctx, storage.KeyUserPosts)
		if !jwt.IsExpired(accessToken, m.nowTime()) {
			m.startPreload(gen, accessToken, communityID)
		}
	}
	return nil
}

// Logout clears the session and every persisted key. Safe to call when
// already logged out.
func (m *Manager) Logout(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.clearLocked(ctx, StatusLoggedOut, true)
}

// IsLoggedIn reports whether an access token is held, expired or not.
func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken != ""
}

// IsTokenExpired reports whether token is unusable now. Malformed tokens and
// tokens without exp count as expired.
func (m *Manager) IsTokenExpired(token string) bool {
	return jwt.IsExpired(token, m.nowTime())
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// RefreshSession exchanges the refresh token for a new pair. Without a refresh
// token the session is logged out and ErrNoRefreshToken returned without any
// network call. Any exchange failure logs the session out and is returned.
// Concurrent callers share a single exchange.
func (m *Manager) RefreshSession(ctx context.Context) error {
	refreshToken, gen := m.currentRefreshToken(ctx)
	if refreshToken == "" {
		m.metrics.refreshes.WithLabelValues(resultNoToken).Inc()
		m.logger.Info().Msg("no refresh token, logging out")
		m.Logout(ctx)
		return errors.Wrap(clienterrors.ErrNoRefreshToken, "[sessions.Manager.RefreshSession]")
	}

	m.setStatusIf(gen, StatusRefreshing)
	tok, err := m.refresher.Refresh(ctx, refreshToken)

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			// Only this caller gave up; the shared exchange carries on.
			m.setStatusIf(gen, StatusExpired)
			return errors.Wrap(err, "[sessions.Manager.RefreshSession]")
		}
		m.metrics.refreshes.WithLabelValues(resultFailure).Inc()
		if m.currentGeneration() != gen {
			return errors.Wrap(err, "[sessions.Manager.RefreshSession] session changed during refresh")
		}
		m.logger.Warn().Err(err).Msg("session refresh failed, logging out")
		m.clearLocked(ctx, StatusInvalid, true)
		return errors.Wrap(clienterrors.WithCause(clienterrors.ErrSessionInvalid, err), "[sessions.Manager.RefreshSession]")
	}

	m.mu.Lock()
	if m.accessToken == tok.AccessToken {
		// Adopted by a concurrent caller sharing this exchange.
		m.mu.Unlock()
		return nil
	}
	if m.generation != gen {
		m.mu.Unlock()
		m.metrics.refreshes.WithLabelValues(resultDiscarded).Inc()
		return errors.Wrap(clienterrors.ErrSessionInvalid, "[sessions.Manager.RefreshSession] session changed during refresh")
	}
	m.cancelPreloadLocked()
	m.status = StatusValid
	m.accessToken = tok.AccessToken
	m.refreshToken = tok.RefreshToken
	m.generation++
	newGen := m.generation
	communityID := m.communityID
	m.mu.Unlock()
	m.publish()
	m.metrics.refreshes.WithLabelValues(resultSuccess).Inc()

	m.persist(ctx, storage.KeyAuthToken, tok.AccessToken)
	m.persist(ctx, storage.KeyRefreshToken, tok.RefreshToken)

	if !jwt.IsExpired(tok.AccessToken, m.nowTime()) {
		m.startPreload(newGen, tok.AccessToken, communityID)
	}
	return nil
}

// ValidToken returns an access token that is not expired, refreshing first
// when the held one has expired. Expiry is only checked here, when a consumer
// is about to use the token.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	accessToken, gen := m.accessToken, m.generation
	m.mu.RUnlock()

	if accessToken == "" {
		return "", clienterrors.ErrNotLoggedIn
	}
	if !jwt.IsExpired(accessToken, m.nowTime()) {
		return accessToken, nil
	}

	m.setStatusIf(gen, StatusExpired)
	if err := m.RefreshSession(ctx); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.accessToken == "" {
		return "", clienterrors.ErrNotLoggedIn
	}
	return m.accessToken, nil
}

// Token implements oauth2.TokenSource so api calls can authenticate through
// the manager.
func (m *Manager) Token() (*oauth2.Token, error) {
	accessToken, err := m.ValidToken(context.Background())
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if exp, err := jwt.ExpiresAt(accessToken); err == nil {
		tok.Expiry = exp
	}
	return tok, nil
}

// LoadCachedData reads the user record and the cached collections back from
// the store, replacing what is held in memory.
func (m *Manager) LoadCachedData(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	user := m.loadUser(ctx)
	cached := m.loadCollections(ctx)

	m.mu.Lock()
	if user != nil {
		m.user = user
		if m.communityID == "" {
			m.communityID = user.CommunityID()
		}
	}
	cached.assignLocked(m)
	m.mu.Unlock()
	m.publish()
}

// Close stops in-flight preloads and closes subscriber channels. The manager
// must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.cancelPreloadLocked()
	m.mu.Unlock()
	m.preloadWG.Wait()

	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.closed = true
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
}

// clearLocked drops every session field and, when purge is set, every
// persisted key. status is StatusInvalid for a failed refresh; the session
// settles in StatusLoggedOut either way. Caller holds m.writeMu.
func (m *Manager) clearLocked(ctx context.Context, status Status, purge bool) {
	m.mu.Lock()
	m.cancelPreloadLocked()
	m.status = status
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	m.communityID = ""
	m.posts, m.activities, m.events = nil, nil, nil
	m.generation++
	m.mu.Unlock()

	if status != StatusLoggedOut {
		m.publish()
		m.mu.Lock()
		m.status = StatusLoggedOut
		m.mu.Unlock()
	}
	m.publish()

	if purge {
		m.delete(ctx, storage.AllKeys...)
	}
}

// isAccountSwitch reports whether the account logging in differs from the one
// whose data is held, in memory or in the store. An account is identified by
// its user id, or by the token subject when no user record is available.
func (m *Manager) isAccountSwitch(ctx context.Context, user *users.User, accessToken string) bool {
	m.mu.RLock()
	previous, previousToken := m.user, m.accessToken
	m.mu.RUnlock()
	if previous == nil {
		previous = m.loadUser(ctx)
	}
	if previousToken == "" {
		previousToken = m.load(ctx, storage.KeyAuthToken)
	}
	was := accountID(previous, previousToken)
	now := accountID(user, accessToken)
	if was == "" || now == "" {
		return false
	}
	return was != now
}

func accountID(user *users.User, accessToken string) string {
	if user != nil && user.ID != "" {
		return user.ID
	}
	return jwt.Subject(accessToken)
}

func (m *Manager) currentRefreshToken(ctx context.Context) (string, uint64) {
	m.mu.RLock()
	refreshToken, gen := m.refreshToken, m.generation
	m.mu.RUnlock()
	if refreshToken == "" {
		refreshToken = m.load(ctx, storage.KeyRefreshToken)
	}
	return refreshToken, gen
}

func (m *Manager) currentGeneration() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// setStatusIf moves a token-holding session to status unless the session has
// moved on since gen.
func (m *Manager) setStatusIf(gen uint64, status Status) {
	m.mu.Lock()
	if m.generation != gen || m.accessToken == "" || m.status == status {
		m.mu.Unlock()
		return
	}
	m.status = status
	m.mu.Unlock()
	m.publish()
}

func (m *Manager) load(ctx context.Context, key string) string {
	value, _, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("failed to read persisted value")
		return ""
	}
	return value
}

func (m *Manager) loadUser(ctx context.Context) *users.User {
	raw := m.load(ctx, storage.KeyUser)
	if raw == "" {
		return nil
	}
	user, err := users.Unmarshal(raw)
	if err != nil {
		m.logger.Warn().Err(err).Msg("persisted user record is unreadable")
		return nil
	}
	return user
}

func (m *Manager) persist(ctx context.Context, key, value string) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.metrics.persistFailures.WithLabelValues(key).Inc()
		m.logger.Error().Err(err).Str("key", key).Msg("failed to persist session value")
	}
}

func (m *Manager) persistOrDelete(ctx context.Context, key, value string) {
	if value == "" {
		m.delete(ctx, key)
		return
	}
	m.persist(ctx, key, value)
}

func (m *Manager) delete(ctx context.Context, keys ...string) {
	if err := m.store.Delete(ctx, keys...); err != nil {
		for _, key := range keys {
			m.metrics.persistFailures.WithLabelValues(key).Inc()
		}
		m.logger.Error().Err(err).Strs("keys", keys).Msg("failed to delete persisted session values")
	}
}
