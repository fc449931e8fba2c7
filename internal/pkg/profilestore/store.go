// Package profilestore keeps the last known user profile so pages can show
// who is signed in without calling the API first. The profile is advisory:
// access decisions are made from the access token alone.
package profilestore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/pkg/observability/metrics"
)

// Key is the single storage key the profile lives under.
const Key = "user"

// KV is the persistence port behind a Store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Store reads and writes the cached profile. Storage failures are logged and
// the store continues in memory; no method returns an error.
type Store struct {
	mu       sync.Mutex
	kv       KV
	fallback KV
	degraded bool
	logger   *zap.Logger
}

// New wraps kv. A nil kv gives a purely in-memory store.
func New(kv KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	fallback := NewMemoryKV(0)
	if kv == nil {
		kv = fallback
	}
	return &Store{kv: kv, fallback: fallback, logger: logger}
}

// Load rehydrates the cached profile.
func (s *Store) Load(ctx context.Context) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.active().Get(ctx, Key)
	if err != nil {
		s.degrade(err, "load")
		raw, ok, _ = s.fallback.Get(ctx, Key)
	}
	if !ok || len(raw) == 0 {
		return nil, false
	}

	user, err := decode(raw)
	if err != nil {
		s.logger.Warn("Discarding unreadable cached profile", zap.Error(err))
		_ = s.active().Remove(ctx, Key)
		return nil, false
	}
	return user, true
}

// Set replaces the cached profile. Nil clears it.
func (s *Store) Set(ctx context.Context, user *models.User) {
	if user == nil {
		s.Clear(ctx)
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("Failed to encode profile", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active().Set(ctx, Key, raw); err != nil {
		s.degrade(err, "set")
		_ = s.fallback.Set(ctx, Key, raw)
	}
}

// Clear removes the cached profile entirely.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active().Remove(ctx, Key); err != nil {
		s.degrade(err, "clear")
	}
	_ = s.fallback.Remove(ctx, Key)
}

// Degraded reports whether the store has fallen back to memory.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) active() KV {
	if s.degraded {
		return s.fallback
	}
	return s.kv
}

// degrade must be called with mu held.
func (s *Store) degrade(err error, op string) {
	if s.degraded {
		return
	}
	s.degraded = true
	s.logger.Warn("Profile storage unavailable, continuing in memory",
		zap.String("op", op),
		zap.Error(err),
	)
	metrics.Get().ProfileStoreFallbacksTotal.Add(context.Background(), 1)
}

func decode(raw []byte) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, errors.Wrap(err, "decode cached profile")
	}
	if user.ID == "" && user.Email == "" {
		return nil, errors.New("cached profile has no identity")
	}
	return &user, nil
}
