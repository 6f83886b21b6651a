package payments

import (
	"context"
	"fmt"
	"log"

	"github.com/ryghoul/akobylee/internal/mailer"
)

// ConfirmService finalizes a paid session: it emails the customer receipt
// and the operator notice exactly once per session identifier.
type ConfirmService struct {
	provider      Provider
	registry      Registry
	mailer        mailer.Mailer
	storeName     string
	operatorEmail string
}

func NewConfirmService(provider Provider, registry Registry, m mailer.Mailer, storeName, operatorEmail string) *ConfirmService {
	return &ConfirmService{
		provider:      provider,
		registry:      registry,
		mailer:        m,
		storeName:     storeName,
		operatorEmail: operatorEmail,
	}
}

// Confirm retrieves the session, verifies payment, and sends the emails
// on the first call per session. Later calls (or concurrent duplicates)
// succeed without resending.
func (s *ConfirmService) Confirm(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}

	session, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return &UpstreamError{Op: "retrieve checkout session", Err: err}
	}

	if !session.Paid {
		return fmt.Errorf("%w: status %s", ErrPaymentIncomplete, session.PaymentStatus)
	}

	first, err := s.registry.MarkEmailed(ctx, sessionID)
	if err != nil {
		return &UpstreamError{Op: "record emailed session", Err: err}
	}
	if !first {
		return nil
	}

	if session.CustomerEmail != "" {
		receipt := mailer.Message{
			To:      session.CustomerEmail,
			Subject: fmt.Sprintf("%s — Order Confirmation", s.storeName),
			Body:    customerReceipt(session, s.storeName),
		}
		if err := s.mailer.Send(ctx, receipt); err != nil {
			return &UpstreamError{Op: "send receipt", Err: err}
		}
	} else {
		log.Printf("session %s has no customer email, skipping receipt", sessionID)
	}

	noticeTo := session.CustomerEmail
	if noticeTo == "" {
		noticeTo = session.CustomerName
	}
	notice := mailer.Message{
		To:      s.operatorEmail,
		Subject: fmt.Sprintf("New Order — %s", noticeTo),
		Body:    operatorNotice(session),
	}
	if err := s.mailer.Send(ctx, notice); err != nil {
		return &UpstreamError{Op: "send order notice", Err: err}
	}

	return nil
}
