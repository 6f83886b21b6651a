package payments

import (
	"context"
	"fmt"

	"github.com/ryghoul/akobylee/internal/domain"
)

// AllowedShippingCountries is the fixed allow-list the hosted checkout
// page offers for the shipping address.
var AllowedShippingCountries = []string{"US", "CA", "GB", "AU", "JP", "DE", "FR", "MX", "SG"}

// SessionService turns a checkout payload into a hosted payment session.
type SessionService struct {
	provider Provider
	baseURL  string
	// hasShopPage steers the cancel redirect: back to the shop when it
	// exists, otherwise to the landing/success page.
	hasShopPage func() bool
}

func NewSessionService(provider Provider, baseURL string, hasShopPage func() bool) *SessionService {
	if hasShopPage == nil {
		hasShopPage = func() bool { return true }
	}
	return &SessionService{
		provider:    provider,
		baseURL:     baseURL,
		hasShopPage: hasShopPage,
	}
}

// Create opens a provider session for the given items and returns the
// hosted payment URL. Empty items fail before the provider is touched.
func (s *SessionService) Create(ctx context.Context, items []domain.CheckoutLineItem, customer *domain.CustomerInfo) (string, error) {
	if len(items) == 0 {
		return "", ErrNoItems
	}

	params := CreateSessionParams{
		Items:            items,
		AllowedCountries: AllowedShippingCountries,
		SuccessURL:       fmt.Sprintf("%s/success.html?paid=1&session_id={CHECKOUT_SESSION_ID}", s.baseURL),
		CancelURL:        s.cancelURL(),
	}
	if customer != nil {
		params.CustomerEmail = customer.Email
	}

	session, err := s.provider.CreateSession(ctx, params)
	if err != nil {
		return "", &UpstreamError{Op: "create checkout session", Err: err}
	}
	if session.URL == "" {
		return "", &UpstreamError{Op: "create checkout session", Err: fmt.Errorf("provider returned no redirect URL")}
	}

	return session.URL, nil
}

func (s *SessionService) cancelURL() string {
	if s.hasShopPage() {
		return fmt.Sprintf("%s/shop.html?canceled=1", s.baseURL)
	}
	return fmt.Sprintf("%s/success.html?canceled=1", s.baseURL)
}
