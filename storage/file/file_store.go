// Package file keeps the client's key/value state in a single JSON document
// on disk, optionally sealed with a passphrase.
package file

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/storage"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	fileName      = "session.json"
	formatVersion = 1
	saltLength    = 16
	nonceLength   = 24
)

var _ storage.Store = (*Store)(nil)

// document is the on-disk layout. Exactly one of Entries or Sealed is set.
type document struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries,omitempty"`
	Salt    []byte            `json:"salt,omitempty"`
	Sealed  []byte            `json:"sealed,omitempty"` // nonce || secretbox(entries)
}

type Store struct {
	path   string
	key    *[32]byte
	salt   []byte
	values map[string]string
	lock   sync.Mutex
}

type Option func(*options)

type options struct {
	passphrase string
}

// WithPassphrase seals the document at rest. The key is derived with argon2id.
func WithPassphrase(passphrase string) Option {
	return func(o *options) {
		o.passphrase = passphrase
	}
}

// DefaultPath returns the session file location inside folder.
func DefaultPath(folder string) string {
	return filepath.Join(folder, fileName)
}

// New opens the store at path, loading any existing document. A sealed
// document opened without the right passphrase fails with ErrSealed.
func New(path string, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{path: path, values: make(map[string]string)}
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	if doc != nil && len(doc.Sealed) > 0 && o.passphrase == "" {
		return nil, errors.Wrapf(clienterrors.ErrSealed, "%s needs a passphrase", path)
	}

	if o.passphrase != "" {
		if doc != nil {
			s.salt = doc.Salt
		}
		if len(s.salt) == 0 {
			s.salt = make([]byte, saltLength)
			if _, err := rand.Read(s.salt); err != nil {
				return nil, errors.Wrap(err, "error generating salt")
			}
		}
		s.key = deriveKey(o.passphrase, s.salt)
	}

	if doc == nil {
		return s, nil
	}
	if len(doc.Sealed) > 0 {
		values, err := s.open(doc.Sealed)
		if err != nil {
			return nil, err
		}
		s.values = values
		return s, nil
	}
	for k, v := range doc.Entries {
		s.values[k] = v
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	removed := make(map[string]string)
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			removed[k] = v
			delete(s.values, k)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if err := s.flush(); err != nil {
		for k, v := range removed {
			s.values[k] = v
		}
		return err
	}
	return nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) flush() error {
	doc := document{Version: formatVersion}
	if s.key != nil {
		sealed, err := s.seal(s.values)
		if err != nil {
			return err
		}
		doc.Salt = s.salt
		doc.Sealed = sealed
	} else {
		doc.Entries = s.values
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "error marshaling session document")
	}
	return writeAtomic(s.path, b)
}

func (s *Store) seal(values map[string]string) ([]byte, error) {
	plain, err := json.Marshal(values)
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling entries")
	}
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrap(err, "error generating nonce")
	}
	return secretbox.Seal(nonce[:], plain, &nonce, s.key), nil
}

func (s *Store) open(sealed []byte) (map[string]string, error) {
	if len(sealed) < nonceLength {
		return nil, errors.Wrapf(clienterrors.ErrSealed, "%s is truncated", s.path)
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	plain, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, s.key)
	if !ok {
		return nil, errors.Wrapf(clienterrors.ErrSealed, "wrong passphrase for %s", s.path)
	}
	values := make(map[string]string)
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, errors.Wrapf(err, "error parsing sealed entries in %s", s.path)
	}
	return values, nil
}

func deriveKey(passphrase string, salt []byte) *[32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32))
	return &key
}

func readDocument(path string) (*document, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	doc := &document{}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, errors.Wrapf(err, "error parsing %s", path)
	}
	return doc, nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "error creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "error creating temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error writing %s", tmp.Name())
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error setting mode on %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "error replacing %s", path)
	}
	return nil
}
