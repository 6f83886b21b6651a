package payments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryghoul/akobylee/internal/mailer"
)

type mockMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func paidSession() *Session {
	return &Session{
		ID:               "cs_123",
		Paid:             true,
		PaymentStatus:    "paid",
		AmountTotalCents: 4550,
		Currency:         "usd",
		CustomerEmail:    "ada@example.com",
		CustomerName:     "Ada Lovelace",
		Lines: []SessionLine{
			{Description: "Shirt - Red (M)", Quantity: 2, UnitAmountCents: 2000},
			{Description: "Shipping (US)", Quantity: 1, UnitAmountCents: 500},
		},
	}
}

func newConfirmService(provider Provider, m mailer.Mailer) *ConfirmService {
	return NewConfirmService(provider, NewMemoryRegistry(), m, "AKO by Lee", "owner@example.com")
}

func TestConfirm_MissingSessionID(t *testing.T) {
	svc := newConfirmService(&mockProvider{}, &mockMailer{})

	err := svc.Confirm(context.Background(), "")

	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestConfirm_UnpaidSessionRejected(t *testing.T) {
	session := paidSession()
	session.Paid = false
	session.PaymentStatus = "unpaid"
	mm := &mockMailer{}
	svc := newConfirmService(&mockProvider{session: session}, mm)

	err := svc.Confirm(context.Background(), "cs_123")

	assert.ErrorIs(t, err, ErrPaymentIncomplete)
	assert.Zero(t, mm.sentCount())
}

func TestConfirm_RetrieveFailureIsUpstream(t *testing.T) {
	svc := newConfirmService(&mockProvider{retrieveErr: errors.New("no such session")}, &mockMailer{})

	err := svc.Confirm(context.Background(), "cs_123")

	var upstream *UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestConfirm_SendsReceiptAndNotice(t *testing.T) {
	mm := &mockMailer{}
	svc := newConfirmService(&mockProvider{session: paidSession()}, mm)

	require.NoError(t, svc.Confirm(context.Background(), "cs_123"))

	require.Len(t, mm.sent, 2)
	receipt := mm.sent[0]
	assert.Equal(t, "ada@example.com", receipt.To)
	assert.Equal(t, "AKO by Lee — Order Confirmation", receipt.Subject)
	assert.Contains(t, receipt.Body, "Thanks for your order, Ada Lovelace!")
	assert.Contains(t, receipt.Body, "• Shirt - Red (M) — 2 × $20.00")
	assert.Contains(t, receipt.Body, "Total: $45.50 USD")

	notice := mm.sent[1]
	assert.Equal(t, "owner@example.com", notice.To)
	assert.Equal(t, "New Order — ada@example.com", notice.Subject)
	assert.Contains(t, notice.Body, "Session: cs_123")
}

func TestConfirm_SecondCallDoesNotResend(t *testing.T) {
	mm := &mockMailer{}
	svc := newConfirmService(&mockProvider{session: paidSession()}, mm)
	ctx := context.Background()

	require.NoError(t, svc.Confirm(ctx, "cs_123"))
	require.NoError(t, svc.Confirm(ctx, "cs_123"))

	assert.Equal(t, 2, mm.sentCount(), "receipt and notice sent at most once in total")
}

func TestConfirm_ConcurrentCallsSendOnce(t *testing.T) {
	mm := &mockMailer{}
	svc := newConfirmService(&mockProvider{session: paidSession()}, mm)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Confirm(context.Background(), "cs_123")
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, mm.sentCount())
}

func TestConfirm_NoCustomerEmailSkipsReceipt(t *testing.T) {
	session := paidSession()
	session.CustomerEmail = ""
	mm := &mockMailer{}
	svc := newConfirmService(&mockProvider{session: session}, mm)

	require.NoError(t, svc.Confirm(context.Background(), "cs_123"))

	require.Len(t, mm.sent, 1)
	assert.Equal(t, "owner@example.com", mm.sent[0].To)
	assert.Equal(t, "New Order — Ada Lovelace", mm.sent[0].Subject)
	assert.Contains(t, mm.sent[0].Body, "Email: N/A")
}
