package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/simstudio/authclient/storage"
)

// DefaultKey is the storage key of the pair record.
const DefaultKey = "partner_session"

// ErrInvalidPair is returned by Save for a pair without an access token.
var ErrInvalidPair = errors.New("token pair requires an access token")

// Store reads and writes the pair record in a storage.Store.
type Store struct {
	mu sync.Mutex

	backend   storage.Store
	key       string
	legacyKey string
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLegacyAccessKey makes Load fall back to a raw access token stored under key when no
// pair record exists. The result is a degraded pair.
func WithLegacyAccessKey(key string) Option {
	return func(s *Store) {
		s.legacyKey = key
	}
}

// WithLogger sets the logger used for swallowed read failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a Store over backend.
func NewStore(backend storage.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes p as a single record, replacing any previous pair.
func (s *Store) Save(ctx context.Context, p Pair) error {
	if !p.Valid() {
		return ErrInvalidPair
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode token pair: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("save token pair: %w", err)
	}
	if s.legacyKey != "" {
		if err := s.backend.Remove(ctx, s.legacyKey); err != nil {
			s.logger.Warn("tokens: remove legacy access token", slog.Any("error", err))
		}
	}
	return nil
}

// Load returns the stored pair. Any read failure, missing record or corrupt record yields
// ok=false; errors are logged and never returned.
func (s *Store) Load(ctx context.Context) (Pair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("tokens: read token pair", slog.Any("error", err))
		return Pair{}, false
	}
	if found {
		var p Pair
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.logger.Warn("tokens: discard corrupt token record", slog.Any("error", err))
			return Pair{}, false
		}
		if !p.Valid() {
			s.logger.Warn("tokens: discard token record without access token")
			return Pair{}, false
		}
		return p, true
	}

	if s.legacyKey == "" {
		return Pair{}, false
	}
	access, found, err := s.backend.Get(ctx, s.legacyKey)
	if err != nil {
		s.logger.Warn("tokens: read legacy access token", slog.Any("error", err))
		return Pair{}, false
	}
	if !found || access == "" {
		return Pair{}, false
	}
	return Pair{AccessToken: access}, true
}

// Clear removes the pair record and any legacy token.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear token pair: %w", err)
	}
	if s.legacyKey != "" {
		if err := s.backend.Remove(ctx, s.legacyKey); err != nil {
			return fmt.Errorf("clear legacy access token: %w", err)
		}
	}
	return nil
}
