package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ryghoul/akobylee/internal/domain"
)

var ErrProfileNotFound = errors.New("customer profile not found")

// ProfileStore persists the customer record used to prefill the checkout
// form on return visits. Purely a convenience store: losing it never
// affects correctness.
type ProfileStore interface {
	Get(ctx context.Context, cartID string) (*domain.CustomerInfo, error)
	Save(ctx context.Context, cartID string, info *domain.CustomerInfo) error
}

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.CustomerInfo
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domain.CustomerInfo)}
}

func (s *MemoryProfileStore) Get(_ context.Context, cartID string) (*domain.CustomerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, exists := s.profiles[cartID]
	if !exists {
		return nil, ErrProfileNotFound
	}
	return &info, nil
}

func (s *MemoryProfileStore) Save(_ context.Context, cartID string, info *domain.CustomerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[cartID] = *info
	return nil
}

type RedisProfileStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProfileStore(client *redis.Client) *RedisProfileStore {
	return &RedisProfileStore{client: client, ttl: 90 * 24 * time.Hour}
}

func (s *RedisProfileStore) Get(ctx context.Context, cartID string) (*domain.CustomerInfo, error) {
	data, err := s.client.Get(ctx, profileKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var info domain.CustomerInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// Corrupt prefill data is simply forgotten.
		return nil, ErrProfileNotFound
	}
	return &info, nil
}

func (s *RedisProfileStore) Save(ctx context.Context, cartID string, info *domain.CustomerInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal profile failed: %w", err)
	}
	if err := s.client.Set(ctx, profileKey(cartID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func profileKey(cartID string) string {
	return fmt.Sprintf("customer_info:%s", cartID)
}
