package preloadfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/community-client/api"
	"github.com/jrsteele09/community-client/sessions"
	"golang.org/x/oauth2"
)

var _ sessions.Preloader = (*FakePreloader)(nil)

// Call records one fetch: which collection, the community asked for (posts
// only) and the bearer token presented.
type Call struct {
	Collection  string
	CommunityID string
	AccessToken string
}

// FakePreloader serves fixed collections. When Gate is set every fetch blocks
// until it is closed or the fetch's context is done.
type FakePreloader struct {
	Gate chan struct{}

	Posts         []api.Post
	ExplorePosts  []api.Post
	ActivityList  []api.Activity
	EventList     []api.Event
	PostsErr      error
	ActivitiesErr error
	EventsErr     error

	calls []Call
	lock  sync.Mutex
}

func NewFakePreloader() *FakePreloader {
	return &FakePreloader{}
}

func (f *FakePreloader) CommunityFeed(ctx context.Context, ts oauth2.TokenSource, communityID string) ([]api.Post, error) {
	if err := f.enter(ctx, "community-feed", communityID, ts); err != nil {
		return nil, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.Posts, f.PostsErr
}

func (f *FakePreloader) ExploreFeed(ctx context.Context, ts oauth2.TokenSource) ([]api.Post, error) {
	if err := f.enter(ctx, "explore-feed", "", ts); err != nil {
		return nil, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.ExplorePosts, f.PostsErr
}

func (f *FakePreloader) Activities(ctx context.Context, ts oauth2.TokenSource) ([]api.Activity, error) {
	if err := f.enter(ctx, "activities", "", ts); err != nil {
		return nil, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.ActivityList, f.ActivitiesErr
}

func (f *FakePreloader) Events(ctx context.Context, ts oauth2.TokenSource) ([]api.Event, error) {
	if err := f.enter(ctx, "events", "", ts); err != nil {
		return nil, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.EventList, f.EventsErr
}

// Calls returns the fetches made so far.
func (f *FakePreloader) Calls() []Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many fetches were made.
func (f *FakePreloader) CallCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.calls)
}

func (f *FakePreloader) enter(ctx context.Context, collection, communityID string, ts oauth2.TokenSource) error {
	call := Call{Collection: collection, CommunityID: communityID}
	if ts != nil {
		if tok, err := ts.Token(); err == nil {
			call.AccessToken = tok.AccessToken
		}
	}

	f.lock.Lock()
	f.calls = append(f.calls, call)
	gate := f.Gate
	f.lock.Unlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
