package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ryghoul/akobylee/internal/domain"
)

// MemoryRepository keeps carts in process memory. Used when no Mongo URI
// is configured and as the repository in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[string]*domain.Cart),
	}
}

func (m *MemoryRepository) GetCart(_ context.Context, cartID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, exists := m.carts[cartID]
	if !exists {
		return nil, ErrCartNotFound
	}

	clone := *cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	return &clone, nil
}

func (m *MemoryRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	clone := *cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	m.carts[cart.CartID] = &clone
	return nil
}

func (m *MemoryRepository) DeleteCart(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.carts[cartID]; !exists {
		return ErrCartNotFound
	}
	delete(m.carts, cartID)
	return nil
}
