package payments

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_FirstMarkWins(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	first, err := r.MarkEmailed(ctx, "cs_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := r.MarkEmailed(ctx, "cs_1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := r.MarkEmailed(ctx, "cs_2")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestMemoryRegistry_ConcurrentSingleWinner(t *testing.T) {
	r := NewMemoryRegistry()
	var wins int64
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := r.MarkEmailed(context.Background(), "cs_1")
			if err == nil && first {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
}

func TestRedisRegistry_FirstMarkWins(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewRedisRegistry(client)
	ctx := context.Background()

	first, err := r.MarkEmailed(ctx, "cs_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := r.MarkEmailed(ctx, "cs_1")
	require.NoError(t, err)
	assert.False(t, again)

	ttl := mr.TTL(registryKey("cs_1"))
	assert.Greater(t, ttl.Hours(), 1.0)
}
