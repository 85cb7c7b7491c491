package refreshfake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/community-client/token/refresh"
	"golang.org/x/oauth2"
)

var _ refresh.Exchanger = (*FakeExchanger)(nil)

// Result is one scripted response from the fake.
type Result struct {
	AccessToken     string
	NewRefreshToken string
	Err             error
}

// FakeExchanger replays scripted results in order, repeating the last one once
// the script runs out. When Gate is set every call blocks until it is closed.
type FakeExchanger struct {
	Gate chan struct{}

	results []Result
	calls   []string
	lock    sync.Mutex
}

func NewFakeExchanger(results ...Result) *FakeExchanger {
	return &FakeExchanger{results: results}
}

func (f *FakeExchanger) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	f.lock.Lock()
	f.calls = append(f.calls, refreshToken)
	var res Result
	switch {
	case len(f.results) == 0:
		res = Result{Err: errors.New("no scripted result")}
	case len(f.calls) <= len(f.results):
		res = f.results[len(f.calls)-1]
	default:
		res = f.results[len(f.results)-1]
	}
	gate := f.Gate
	f.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if res.Err != nil {
		return nil, res.Err
	}
	return &oauth2.Token{AccessToken: res.AccessToken, RefreshToken: res.NewRefreshToken}, nil
}

// Calls returns the refresh tokens the fake was called with.
func (f *FakeExchanger) Calls() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many exchanges were attempted.
func (f *FakeExchanger) CallCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.calls)
}
