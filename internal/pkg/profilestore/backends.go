package profilestore

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// MemoryKV keeps values in process memory. Entries expire after ttl; a
// ttl of zero keeps them until removed.
type MemoryKV struct {
	c *cache.Cache
}

func NewMemoryKV(ttl time.Duration) *MemoryKV {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryKV{c: cache.New(ttl, 10*time.Minute)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.c.Set(key, cp, cache.DefaultExpiration)
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// RedisKV stores values in Redis with an optional TTL.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r == nil || r.client == nil {
		return nil, false, errors.New("redis client not configured")
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Del(ctx, key).Err()
}

// SessionKV stores values in the visitor's cookie session, the closest
// thing the server has to the browser's own storage.
type SessionKV struct {
	session sessions.Session
}

func NewSessionKV(session sessions.Session) *SessionKV {
	return &SessionKV{session: session}
}

func (s *SessionKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v := s.session.Get(key)
	if v == nil {
		return nil, false, nil
	}
	str, ok := v.(string)
	if !ok {
		return nil, false, nil
	}
	return []byte(str), true, nil
}

func (s *SessionKV) Set(_ context.Context, key string, value []byte) error {
	s.session.Set(key, string(value))
	return s.session.Save()
}

func (s *SessionKV) Remove(_ context.Context, key string) error {
	s.session.Delete(key)
	return s.session.Save()
}

// Namespaced scopes a shared KV to one visitor.
func Namespaced(kv KV, namespace string) KV {
	return &namespacedKV{kv: kv, prefix: "profile:" + namespace + ":"}
}

type namespacedKV struct {
	kv     KV
	prefix string
}

func (n *namespacedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *namespacedKV) Set(ctx context.Context, key string, value []byte) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *namespacedKV) Remove(ctx context.Context, key string) error {
	return n.kv.Remove(ctx, n.prefix+key)
}
