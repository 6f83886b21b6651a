package repository

import (
	"context"
	"errors"

	"github.com/ryghoul/akobylee/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository is the durable home of a cart, keyed by the cart ID the
// browser carries in its cookie. Consumers define this interface, not the
// storage implementation.
type CartRepository interface {
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, cartID string) error
}
