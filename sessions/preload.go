package sessions

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/community-client/api"
	"github.com/jrsteele09/community-client/storage"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// Preloader fetches the collections that depend on the session. *api.Client
// implements it.
type Preloader interface {
	CommunityFeed(ctx context.Context, ts oauth2.TokenSource, communityID string) ([]api.Post, error)
	ExploreFeed(ctx context.Context, ts oauth2.TokenSource) ([]api.Post, error)
	Activities(ctx context.Context, ts oauth2.TokenSource) ([]api.Activity, error)
	Events(ctx context.Context, ts oauth2.TokenSource) ([]api.Event, error)
}

var _ Preloader = (*api.Client)(nil)

// Collection names used in logs and metrics.
const (
	collectionPosts      = "posts"
	collectionActivities = "activities"
	collectionEvents     = "events"
)

// startPreload fetches posts, activities and events for generation gen in the
// background, cancelling whatever preload was running before. Caller holds
// m.writeMu.
func (m *Manager) startPreload(gen uint64, accessToken, communityID string) {
	if m.preloader == nil {
		return
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.preloadTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.preloadTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	done := make(chan struct{})
	m.mu.Lock()
	m.cancelPreloadLocked()
	m.preloadCancel = cancel
	m.preloadDone = done
	m.mu.Unlock()

	m.preloadWG.Add(1)
	go func() {
		defer m.preloadWG.Done()
		defer close(done)
		defer cancel()
		m.preload(ctx, gen, accessToken, communityID)
	}()
}

// WaitPreload blocks until the most recently started preload has finished,
// or ctx is done. It returns immediately when no preload was started.
func (m *Manager) WaitPreload(ctx context.Context) error {
	m.mu.RLock()
	done := m.preloadDone
	m.mu.RUnlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cancelPreloadLocked cancels the running preload, if any. Caller holds m.mu.
func (m *Manager) cancelPreloadLocked() {
	if m.preloadCancel != nil {
		m.preloadCancel()
		m.preloadCancel = nil
	}
}

func (m *Manager) preload(ctx context.Context, gen uint64, accessToken, communityID string) {
	// Pinned to the token of this generation; a later refresh starts its own round.
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	logger := m.logger.With().Uint64("generation", gen).Logger()
	logger.Debug().Str("community_id", communityID).Msg("preloading session collections")

	// Plain Group: one failed fetch must not cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		fetch := func(ctx context.Context) ([]api.Post, error) {
			if communityID == "" {
				return m.preloader.ExploreFeed(ctx, ts)
			}
			return m.preloader.CommunityFeed(ctx, ts, communityID)
		}
		return preloadCollection(ctx, m, gen, collectionPosts, storage.KeyUserPosts, fetch,
			func(posts []api.Post) { m.posts = posts })
	})
	g.Go(func() error {
		fetch := func(ctx context.Context) ([]api.Activity, error) {
			return m.preloader.Activities(ctx, ts)
		}
		return preloadCollection(ctx, m, gen, collectionActivities, storage.KeyUserActivities, fetch,
			func(activities []api.Activity) { m.activities = activities })
	})
	g.Go(func() error {
		fetch := func(ctx context.Context) ([]api.Event, error) {
			return m.preloader.Events(ctx, ts)
		}
		return preloadCollection(ctx, m, gen, collectionEvents, storage.KeyUserEvents, fetch,
			func(events []api.Event) { m.events = events })
	})
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("preload incomplete, keeping cached collections")
	}
}

// preloadCollection runs one fetch and, if the session is still at gen,
// adopts and caches the result. assign runs with m.mu held.
func preloadCollection[T any](
	ctx context.Context,
	m *Manager,
	gen uint64,
	name, key string,
	fetch func(context.Context) ([]T, error),
	assign func([]T),
) error {
	items, err := fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			m.metrics.preloads.WithLabelValues(name, resultDiscarded).Inc()
			return nil
		}
		m.metrics.preloads.WithLabelValues(name, resultFailure).Inc()
		m.logger.Warn().Err(err).Str("collection", name).Msg("preload fetch failed")
		return err
	}
	if items == nil {
		items = []T{}
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		m.metrics.preloads.WithLabelValues(name, resultDiscarded).Inc()
		m.logger.Debug().Str("collection", name).Msg("discarding stale preload result")
		return nil
	}
	assign(items)
	m.mu.Unlock()
	m.publish()
	m.metrics.preloads.WithLabelValues(name, resultSuccess).Inc()

	raw, err := json.Marshal(items)
	if err != nil {
		m.logger.Error().Err(err).Str("collection", name).Msg("failed to serialise collection")
		return nil
	}
	m.persist(ctx, key, string(raw))
	return nil
}

// cachedCollections is what the store holds for the three collections. A nil
// field was absent or unreadable and leaves memory untouched.
type cachedCollections struct {
	posts      []api.Post
	activities []api.Activity
	events     []api.Event
}

func (m *Manager) loadCollections(ctx context.Context) cachedCollections {
	return cachedCollections{
		posts:      loadCollection[api.Post](ctx, m, storage.KeyUserPosts),
		activities: loadCollection[api.Activity](ctx, m, storage.KeyUserActivities),
		events:     loadCollection[api.Event](ctx, m, storage.KeyUserEvents),
	}
}

// assignLocked copies the loaded collections into m. Caller holds m.mu.
func (c cachedCollections) assignLocked(m *Manager) {
	if c.posts != nil {
		m.posts = c.posts
	}
	if c.activities != nil {
		m.activities = c.activities
	}
	if c.events != nil {
		m.events = c.events
	}
}

func loadCollection[T any](ctx context.Context, m *Manager, key string) []T {
	raw := m.load(ctx, key)
	if raw == "" {
		return nil
	}
	items := []T{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("cached collection is unreadable")
		return nil
	}
	return items
}
