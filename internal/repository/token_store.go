package repository

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore remembers revoked token ids until the tokens would have expired
// on their own.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// RevokeOnce revokes tokenID and reports whether this call did it. Of
	// several concurrent callers exactly one gets true.
	RevokeOnce(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}

const revokedKeyPrefix = "auth:revoked:"

type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a token store backed by Redis
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// Revoke marks tokenID revoked until ttl elapses. A non-positive ttl is a no-op.
func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// RevokeOnce relies on SET NX so the check and the write are one command.
func (s *RedisTokenStore) RevokeOnce(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	return s.client.SetNX(ctx, revokedKeyPrefix+tokenID, "1", ttl).Result()
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryTokenStore is the single-process fallback when Redis is not configured.
type MemoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenStore creates an in-process token store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryTokenStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *MemoryTokenStore) RevokeOnce(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)
	if _, ok := s.revoked[tokenID]; ok {
		return false, nil
	}
	s.revoked[tokenID] = now.Add(ttl)
	return true, nil
}

// prune drops expired entries. Callers hold mu.
func (s *MemoryTokenStore) prune(now time.Time) {
	for id, exp := range s.revoked {
		if !now.Before(exp) {
			delete(s.revoked, id)
		}
	}
}

func (s *MemoryTokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
