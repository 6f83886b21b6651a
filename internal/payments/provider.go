package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryghoul/akobylee/internal/domain"
)

var (
	ErrNoItems        = errors.New("no items in request")
	ErrMissingSession = errors.New("missing session_id")
	// ErrPaymentIncomplete means the provider reports the session's
	// payment as anything other than paid.
	ErrPaymentIncomplete = errors.New("payment not completed")
)

// UpstreamError surfaces a provider or transport failure to the caller.
// Nothing retries it; the caller must resubmit.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// CreateSessionParams describes the hosted checkout session to open.
type CreateSessionParams struct {
	Items            []domain.CheckoutLineItem
	CustomerEmail    string
	AllowedCountries []string
	SuccessURL       string
	CancelURL        string
}

// SessionLine is one provider-side line of a retrieved session.
type SessionLine struct {
	Description     string
	Quantity        int64
	UnitAmountCents int64
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID               string
	URL              string
	Paid             bool
	PaymentStatus    string
	AmountTotalCents int64
	Currency         string
	CustomerEmail    string
	CustomerName     string
	Lines            []SessionLine
}

// Provider is the payment provider boundary. The production
// implementation talks to Stripe; tests substitute their own.
type Provider interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
