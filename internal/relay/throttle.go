package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is the minimum gap between accepted submissions per source
// address.
const Window = 20 * time.Second

// Throttle gates submissions by source address. Allow must be an atomic
// check-and-set: it returns false while the source is inside the window
// and records the hit when it returns true.
type Throttle interface {
	Allow(ctx context.Context, source string) (bool, error)
}

// MemoryThrottle is the in-process timestamp map.
type MemoryThrottle struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
}

func NewMemoryThrottle() *MemoryThrottle {
	return &MemoryThrottle{
		lastHit: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (t *MemoryThrottle) Allow(_ context.Context, source string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, seen := t.lastHit[source]; seen && now.Sub(last) < Window {
		return false, nil
	}
	t.lastHit[source] = now
	return true, nil
}

// RedisThrottle shares the window across instances using SET NX with the
// window as TTL.
type RedisThrottle struct {
	client *redis.Client
}

func NewRedisThrottle(client *redis.Client) *RedisThrottle {
	return &RedisThrottle{client: client}
}

func (t *RedisThrottle) Allow(ctx context.Context, source string) (bool, error) {
	ok, err := t.client.SetNX(ctx, throttleKey(source), 1, Window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func throttleKey(source string) string {
	return fmt.Sprintf("relay_hit:%s", source)
}
