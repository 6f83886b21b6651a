package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry records session identifiers that have already been emailed so
// a retried confirmation never sends twice. MarkEmailed must be an atomic
// insert-if-absent: it returns true for exactly one caller per session.
type Registry interface {
	MarkEmailed(ctx context.Context, sessionID string) (bool, error)
}

// MemoryRegistry is the process-lifetime set. A restart forgets it, which
// at worst re-emails an already-confirmed session.
type MemoryRegistry struct {
	mu      sync.Mutex
	emailed map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{emailed: make(map[string]struct{})}
}

func (r *MemoryRegistry) MarkEmailed(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.emailed[sessionID]; seen {
		return false, nil
	}
	r.emailed[sessionID] = struct{}{}
	return true, nil
}

// RedisRegistry shares the set across instances via SETNX with a TTL.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: 30 * 24 * time.Hour}
}

func (r *RedisRegistry) MarkEmailed(ctx context.Context, sessionID string) (bool, error) {
	first, err := r.client.SetNX(ctx, registryKey(sessionID), 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return first, nil
}

func registryKey(sessionID string) string {
	return fmt.Sprintf("emailed_session:%s", sessionID)
}
