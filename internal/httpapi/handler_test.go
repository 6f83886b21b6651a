package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryghoul/akobylee/internal/cache"
	"github.com/ryghoul/akobylee/internal/checkout"
	"github.com/ryghoul/akobylee/internal/domain"
	"github.com/ryghoul/akobylee/internal/mailer"
	"github.com/ryghoul/akobylee/internal/payments"
	"github.com/ryghoul/akobylee/internal/relay"
	"github.com/ryghoul/akobylee/internal/repository"
	"github.com/ryghoul/akobylee/internal/service"
)

type providerMock struct {
	session     *payments.Session
	createErr   error
	retrieveErr error
}

func (p *providerMock) CreateSession(_ context.Context, _ payments.CreateSessionParams) (*payments.Session, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	return p.session, nil
}

func (p *providerMock) RetrieveSession(_ context.Context, _ string) (*payments.Session, error) {
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	return p.session, nil
}

type mailerMock struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *mailerMock) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailerMock) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	router   http.Handler
	provider *providerMock
	mailer   *mailerMock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	provider := &providerMock{session: &payments.Session{
		ID:  "cs_123",
		URL: "https://pay.example/cs_123",
	}}
	mm := &mailerMock{}

	repo := repository.NewMemoryRepository()
	carts := service.NewCartService(repo, nopCache{})
	sessions := payments.NewSessionService(provider, "http://localhost:3000", func() bool { return true })
	confirms := payments.NewConfirmService(provider, payments.NewMemoryRegistry(), mm, "AKO by Lee", "owner@example.com")
	relaySvc := relay.NewService(mm, relay.NewMemoryThrottle(), "owner@example.com")

	router := NewRouter(RouterConfig{
		Carts:          carts,
		Profiles:       checkout.NewMemoryProfileStore(),
		Sessions:       sessions,
		Confirms:       confirms,
		Relay:          relaySvc,
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
	})

	return &testEnv{router: router, provider: provider, mailer: mm}
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*domain.Cart, error) { return nil, cache.ErrCacheMiss }
func (nopCache) Set(context.Context, string, *domain.Cart) error   { return nil }
func (nopCache) Delete(context.Context, string) error              { return nil }

func validTestCustomer() domain.CustomerInfo {
	return domain.CustomerInfo{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		ShippingZone: domain.ZoneUS,
		Address: domain.Address{
			Line1:      "1 Analytical Way",
			City:       "London",
			State:      "LDN",
			PostalCode: "E1 6AN",
			Country:    "GB",
		},
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:54321"
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCart_CookieMintedOnce(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/cart", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	var cartCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == CartCookieName {
			cartCookie = c
		}
	}
	require.NotNil(t, cartCookie, "first request mints a cart cookie")

	rec = env.do(t, "GET", "/api/cart", nil, []*http.Cookie{cartCookie})
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, CartCookieName, c.Name, "no new cookie when one is presented")
	}
}

func TestCart_AddRenderAdjustRemove(t *testing.T) {
	env := newTestEnv(t)
	cookie := &http.Cookie{Name: CartCookieName, Value: "cart-test"}

	// Empty cart renders the empty state.
	rec := env.do(t, "GET", "/api/cart", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	var view CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Empty)
	assert.False(t, view.CheckoutEnabled)
	assert.Equal(t, "$0.00", view.Total)

	// Add the same item twice: one line, quantity 2, toast on add.
	add := AddItemRequestDTO{Name: "Shirt", Price: "$20.00", Color: "Red", Size: "M", Image: "shirt.jpg"}
	rec = env.do(t, "POST", "/api/cart/items", add, []*http.Cookie{cookie})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Added to cart!", view.Toast)

	rec = env.do(t, "POST", "/api/cart/items", add, []*http.Cookie{cookie})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, "Shirt - Red (M)", view.Items[0].DisplayName)
	assert.Equal(t, "$40.00", view.Total)
	assert.Equal(t, 2, view.Badge)
	assert.True(t, view.CheckoutEnabled)

	// Decrement twice: second decrement removes the line.
	rec = env.do(t, "PATCH", "/api/cart/items/0", AdjustQuantityRequestDTO{Delta: -1}, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Items[0].Quantity)

	rec = env.do(t, "PATCH", "/api/cart/items/0", AdjustQuantityRequestDTO{Delta: -1}, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Empty)
}

func TestCart_RemoveOutOfRangeIsNoop(t *testing.T) {
	env := newTestEnv(t)
	cookie := &http.Cookie{Name: CartCookieName, Value: "cart-test"}

	env.do(t, "POST", "/api/cart/items", AddItemRequestDTO{Name: "Hat", Price: "$10.00"}, []*http.Cookie{cookie})

	rec := env.do(t, "DELETE", "/api/cart/items/7", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)

	var view CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
}

func TestCreateCheckoutSession_EmptyItems(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/create-checkout-session", CreateSessionRequestDTO{}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No items in request."}`, rec.Body.String())
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	env := newTestEnv(t)

	body := CreateSessionRequestDTO{
		Items: []domain.CheckoutLineItem{
			{Name: "Shirt - Red (M)", Price: 2000, Quantity: 2},
			{Name: "Shipping (US)", Price: 500, Quantity: 1},
		},
	}

	rec := env.do(t, "POST", "/create-checkout-session", body, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://pay.example/cs_123"}`, rec.Body.String())
}

func TestCreateCheckoutSession_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.provider.createErr = errors.New("provider melted")

	body := CreateSessionRequestDTO{
		Items: []domain.CheckoutLineItem{{Name: "Shirt", Price: 2000, Quantity: 1}},
	}

	rec := env.do(t, "POST", "/create-checkout-session", body, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "provider melted")
}

func TestConfirmOrder_MissingSessionID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/confirm-order", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing session_id"}`, rec.Body.String())
}

func TestConfirmOrder_PaidSessionEmailsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.provider.session = &payments.Session{
		ID:               "cs_123",
		Paid:             true,
		PaymentStatus:    "paid",
		AmountTotalCents: 4500,
		Currency:         "usd",
		CustomerEmail:    "ada@example.com",
		CustomerName:     "Ada",
		Lines:            []payments.SessionLine{{Description: "Shirt", Quantity: 2, UnitAmountCents: 2000}},
	}

	rec := env.do(t, "GET", "/api/confirm-order?session_id=cs_123", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"emailed":true}`, rec.Body.String())
	assert.Equal(t, 2, env.mailer.sentCount())

	rec = env.do(t, "GET", "/api/confirm-order?session_id=cs_123", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"emailed":true}`, rec.Body.String())
	assert.Equal(t, 2, env.mailer.sentCount(), "no resend on second confirm")
}

func TestConfirmOrder_UnpaidSession(t *testing.T) {
	env := newTestEnv(t)
	env.provider.session = &payments.Session{ID: "cs_123", Paid: false, PaymentStatus: "unpaid"}

	rec := env.do(t, "GET", "/api/confirm-order?session_id=cs_123", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Payment not completed"}`, rec.Body.String())
	assert.Zero(t, env.mailer.sentCount())
}

func TestContact_SuccessThenThrottled(t *testing.T) {
	env := newTestEnv(t)
	body := relay.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "hello"}

	rec := env.do(t, "POST", "/contact", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.mailer.sentCount())

	rec = env.do(t, "POST", "/contact", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Please wait before sending again.", resp.Message)
	assert.Equal(t, 1, env.mailer.sentCount())
}

func TestContact_HoneypotAcceptedWithoutMail(t *testing.T) {
	env := newTestEnv(t)
	body := relay.ContactSubmission{Name: "Bot", Email: "bot@spam.example", Message: "buy now", Website: "https://spam.example"}

	rec := env.do(t, "POST", "/contact", body, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Thanks!"}`, rec.Body.String())
	assert.Zero(t, env.mailer.sentCount())
}

func TestContact_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/contact", relay.ContactSubmission{Name: "Ada"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Name, email, and message are required."}`, rec.Body.String())
}

func TestReserve_Success(t *testing.T) {
	env := newTestEnv(t)
	body := relay.ReservationSubmission{
		Name: "Ada", Email: "ada@example.com",
		Date: "2026-10-01", Time: "19:30", PartySize: 4,
	}

	rec := env.do(t, "POST", "/reserve", body, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.mailer.sentCount())
}

func TestCheckoutSubmit_EmptyCartRejected(t *testing.T) {
	env := newTestEnv(t)

	body := SubmitFormRequestDTO{TermsAccepted: true}
	rec := env.do(t, "POST", "/api/checkout", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Your cart is empty."}`, rec.Body.String())
}

func TestCheckoutSubmit_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	cookie := &http.Cookie{Name: CartCookieName, Value: "cart-test"}

	env.do(t, "POST", "/api/cart/items", AddItemRequestDTO{Name: "Shirt", Price: "$20.00", Color: "Red", Size: "M"}, []*http.Cookie{cookie})

	body := SubmitFormRequestDTO{
		Customer:      validTestCustomer(),
		TermsAccepted: true,
	}
	rec := env.do(t, "POST", "/api/checkout", body, []*http.Cookie{cookie})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://pay.example/cs_123"}`, rec.Body.String())

	// The profile was persisted for prefill.
	rec = env.do(t, "GET", "/api/checkout/profile", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "ada@example.com", saved["email"])
}

func TestCheckoutSubmit_TermsRequired(t *testing.T) {
	env := newTestEnv(t)
	cookie := &http.Cookie{Name: CartCookieName, Value: "cart-test"}

	env.do(t, "POST", "/api/cart/items", AddItemRequestDTO{Name: "Shirt", Price: "$20.00"}, []*http.Cookie{cookie})

	body := SubmitFormRequestDTO{Customer: validTestCustomer(), TermsAccepted: false}
	rec := env.do(t, "POST", "/api/checkout", body, []*http.Cookie{cookie})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Please agree to the Terms & Conditions."}`, rec.Body.String())
}

func TestCheckoutQuote(t *testing.T) {
	env := newTestEnv(t)
	cookie := &http.Cookie{Name: CartCookieName, Value: "cart-test"}

	env.do(t, "POST", "/api/cart/items", AddItemRequestDTO{Name: "Shirt", Price: "$20.00"}, []*http.Cookie{cookie})

	rec := env.do(t, "GET", "/api/checkout/quote?zone=WORLD", nil, []*http.Cookie{cookie})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"subtotal":"$20.00","shipping":"$15.00","total":"$35.00"}`, rec.Body.String())
}
