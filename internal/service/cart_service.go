package service

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ryghoul/akobylee/internal/cache"
	"github.com/ryghoul/akobylee/internal/domain"
	"github.com/ryghoul/akobylee/internal/repository"
)

type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // prevents cache stampede on reads
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cartCache,
	}
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(cartID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, cartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, cartID)
		if errGet != nil {
			if errors.Is(errGet, repository.ErrCartNotFound) {
				// An unknown cart ID reads as an empty cart.
				return &domain.Cart{CartID: cartID}, nil
			}
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), cartID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem appends or accumulates an item and returns the updated cart.
func (s *CartService) AddItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *domain.Cart) {
		cart.Add(item)
	})
}

// AdjustQuantity applies a +/- delta to the line at index; decrementing a
// quantity-1 line removes it.
func (s *CartService) AdjustQuantity(ctx context.Context, cartID string, index, delta int) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *domain.Cart) {
		cart.AdjustQuantity(index, delta)
	})
}

// RemoveItem drops the line at index; out-of-range indexes are a no-op.
func (s *CartService) RemoveItem(ctx context.Context, cartID string, index int) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *domain.Cart) {
		cart.Remove(index)
	})
}

func (s *CartService) ClearCart(ctx context.Context, cartID string) error {
	if err := s.repo.DeleteCart(ctx, cartID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(cartID)
	return nil
}

func (s *CartService) mutate(ctx context.Context, cartID string, fn func(cart *domain.Cart)) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			log.Printf("repo get cart error: %v", err)
			return nil, err
		}
		cart = &domain.Cart{CartID: cartID}
	}

	fn(cart)

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(cartID)
	return cart, nil
}

func (s *CartService) invalidateCache(cartID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, cartID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
