// Package redis keeps the client's key/value state in Redis, for headless
// clients that share session state between hosts.
package redis

import (
	"context"

	"github.com/go-redis/redis"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/storage"
	"github.com/pkg/errors"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	client    *redis.Client
	namespace string
}

// New wraps an existing client. Keys are stored as "<namespace>:<key>".
func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

// Dial connects to addr and checks the connection. Connection and command
// failures match clienterrors.ErrStoreUnavailable.
func Dial(addr, password, namespace string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(clienterrors.WithCause(clienterrors.ErrStoreUnavailable, err), "error connecting to redis at %s", addr)
	}
	return New(client, namespace), nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.WithContext(ctx).Get(s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(clienterrors.WithCause(clienterrors.ErrStoreUnavailable, err), "error reading %s", key)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.WithContext(ctx).Set(s.key(key), value, 0).Err(); err != nil {
		return errors.Wrapf(clienterrors.WithCause(clienterrors.ErrStoreUnavailable, err), "error writing %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = s.key(k)
	}
	if err := s.client.WithContext(ctx).Del(namespaced...).Err(); err != nil {
		return errors.Wrap(clienterrors.WithCause(clienterrors.ErrStoreUnavailable, err), "error deleting keys")
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}
