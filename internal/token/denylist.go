package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked refresh tokens by JTI. Refresh tokens are
// otherwise stateless, so this is the only invalidation mechanism
// short of expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist stores revoked JTIs in Redis with a TTL matching the
// remaining token lifetime, so entries expire on their own.
type RedisDenylist struct {
	client *redis.Client
	prefix string
}

// NewRedisDenylist creates a Redis-backed denylist.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{
		client: client,
		prefix: "revoked:",
	}
}

func (r *RedisDenylist) key(jti string) string {
	return r.prefix + jti
}

func (r *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("denylist: missing jti")
	}
	if ttl <= 0 {
		// Already expired, nothing to record.
		return nil
	}
	return r.client.Set(ctx, r.key(jti), "1", ttl).Err()
}

func (r *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is a process-local Denylist for tests and single-node
// deployments without Redis.
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryDenylist creates an empty in-memory denylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: map[string]time.Time{}}
}

func (m *MemoryDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("denylist: missing jti")
	}
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	m.entries[jti] = time.Now().Add(ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	deadline, ok := m.entries[jti]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		m.mu.Lock()
		delete(m.entries, jti)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}
