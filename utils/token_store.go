package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks revoked token IDs (JTIs) until their natural expiry.
type TokenStore interface {
	Add(id string, expiresAt time.Time)
	Contains(id string) bool
}

var (
	tokenStore     TokenStore
	tokenStoreOnce sync.Once
	tokenStoreMu   sync.RWMutex
)

// SetTokenStore injects the revocation backend. Mainly used by tests and by
// deployments that want to share revocations across instances.
func SetTokenStore(s TokenStore) {
	tokenStoreMu.Lock()
	tokenStore = s
	tokenStoreMu.Unlock()
}

// activeTokenStore lazily picks Redis when reachable, in-memory otherwise.
func activeTokenStore() TokenStore {
	tokenStoreMu.RLock()
	s := tokenStore
	tokenStoreMu.RUnlock()
	if s != nil {
		return s
	}

	tokenStoreOnce.Do(func() {
		var chosen TokenStore = NewMemoryTokenStore()
		if rc := GetRedis(); rc != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := rc.Ping(ctx).Err(); err == nil {
				chosen = NewRedisTokenStore(rc)
			}
		}
		tokenStoreMu.Lock()
		if tokenStore == nil {
			tokenStore = chosen
		}
		tokenStoreMu.Unlock()
	})

	tokenStoreMu.RLock()
	defer tokenStoreMu.RUnlock()
	return tokenStore
}

// RevokeToken marks a token ID as revoked until it would expire anyway.
func RevokeToken(id string, expiresAt time.Time) {
	if id == "" {
		return
	}
	activeTokenStore().Add(id, expiresAt)
}

// IsTokenRevoked reports whether a token ID was revoked before natural expiry.
func IsTokenRevoked(id string) bool {
	if id == "" {
		return false
	}
	return activeTokenStore().Contains(id)
}

// RedisTokenStore keeps revoked JTIs in Redis with a TTL so they vanish when
// the token itself would expire.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore wraps a Redis client as a TokenStore.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) key(id string) string {
	return "jwt:revoked:" + id
}

// Add stores the revocation with a TTL until token expiry.
func (s *RedisTokenStore) Add(id string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.client.Set(ctx, s.key(id), "1", ttl).Err()
}

// Contains fails open: a Redis error is treated as "not revoked" to avoid
// locking every user out on a cache outage.
func (s *RedisTokenStore) Contains(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// MemoryTokenStore is a process-local fallback. It does not survive restarts
// and is not shared across instances.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{entries: map[string]time.Time{}}
}

// Add records the revocation until expiry.
func (s *MemoryTokenStore) Add(id string, expiresAt time.Time) {
	s.mu.Lock()
	s.entries[id] = expiresAt
	s.mu.Unlock()
}

// Contains reports revocation state, lazily dropping expired entries.
func (s *MemoryTokenStore) Contains(id string) bool {
	s.mu.RLock()
	expiresAt, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return false
	}
	return true
}
