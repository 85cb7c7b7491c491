package storefake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/community-client/storage"
)

var _ storage.Store = (*FakeStore)(nil)

// ErrInjected is returned by calls the test asked to fail.
var ErrInjected = errors.New("injected store failure")

type FakeStore struct {
	values   map[string]string
	failSets map[string]bool
	failGets map[string]bool
	lock     sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		values:   make(map[string]string),
		failSets: make(map[string]bool),
		failGets: make(map[string]bool),
	}
}

func (fs *FakeStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	if fs.failGets[key] {
		return "", false, ErrInjected
	}
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FakeStore) Set(_ context.Context, key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.failSets[key] {
		return ErrInjected
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStore) Delete(_ context.Context, keys ...string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	for _, k := range keys {
		delete(fs.values, k)
	}
	return nil
}

// FailSets makes every Set of the given keys fail.
func (fs *FakeStore) FailSets(keys ...string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	for _, k := range keys {
		fs.failSets[k] = true
	}
}

// FailGets makes every Get of the given keys fail.
func (fs *FakeStore) FailGets(keys ...string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	for _, k := range keys {
		fs.failGets[k] = true
	}
}

// Has reports whether key is present.
func (fs *FakeStore) Has(key string) bool {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	_, ok := fs.values[key]
	return ok
}

// Value returns the stored value or "".
func (fs *FakeStore) Value(key string) string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.values[key]
}

// Len returns the number of stored keys.
func (fs *FakeStore) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.values)
}
