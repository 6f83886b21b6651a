package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ryghoul/akobylee/internal/checkout"
	"github.com/ryghoul/akobylee/internal/domain"
	"github.com/ryghoul/akobylee/internal/payments"
	"github.com/ryghoul/akobylee/internal/service"
)

type CheckoutHandler struct {
	carts    *service.CartService
	profiles checkout.ProfileStore
	sessions *payments.SessionService
	confirms *payments.ConfirmService
	timeout  time.Duration
}

func NewCheckoutHandler(
	carts *service.CartService,
	profiles checkout.ProfileStore,
	sessions *payments.SessionService,
	confirms *payments.ConfirmService,
	timeout time.Duration,
) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		profiles: profiles,
		sessions: sessions,
		confirms: confirms,
		timeout:  timeout,
	}
}

// CreateSessionRequestDTO is the raw session contract: pre-built line
// items (shipping line included) plus an optional customer record.
type CreateSessionRequestDTO struct {
	Items    []domain.CheckoutLineItem `json:"items"`
	Customer *domain.CustomerInfo      `json:"customer"`
}

type CheckoutURLResponse struct {
	URL string `json:"url"`
}

// CreateSession implements POST /create-checkout-session.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "No items in request.")
		return
	}

	url, err := h.sessions.Create(ctx, req.Items, req.Customer)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutURLResponse{URL: url})
}

// SubmitFormRequestDTO is the form-driven checkout body: customer fields,
// the terms checkbox and the selected shipping zone.
type SubmitFormRequestDTO struct {
	Customer      domain.CustomerInfo `json:"customer"`
	TermsAccepted bool                `json:"terms_accepted"`
}

// SubmitForm implements POST /api/checkout: it drives the checkout form
// over the server-side cart, persists the customer for prefill, and
// opens the payment session.
func (h *CheckoutHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := cartIDFromContext(r.Context())

	var req SubmitFormRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cart, err := h.carts.GetCart(ctx, cartID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	form := checkout.NewForm()
	if _, err := form.Open(cart, nil); err != nil {
		respondError(w, http.StatusBadRequest, "Your cart is empty.")
		return
	}

	payload, err := form.Submit(req.Customer, req.TermsAccepted)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Persist for prefill next time. Best effort only.
	if err := h.profiles.Save(ctx, cartID, &payload.Customer); err != nil {
		log.Printf("profile save error: %v", err)
	}

	url, err := h.sessions.Create(ctx, payload.Items, &payload.Customer)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutURLResponse{URL: url})
}

// Quote implements GET /api/checkout/quote?zone=: the live summary the
// form shows when the shipping selector changes.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, cartIDFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	zone := domain.ShippingZone(r.URL.Query().Get("zone"))
	respondJSON(w, http.StatusOK, checkout.Summarize(cart, zone))
}

// GetProfile implements GET /api/checkout/profile for form prefill.
func (h *CheckoutHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	info, err := h.profiles.Get(ctx, cartIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, checkout.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "no saved profile")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// SaveProfile implements PUT /api/checkout/profile.
func (h *CheckoutHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var info domain.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if verr := checkout.ValidateCustomer(&info); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Message)
		return
	}

	if err := h.profiles.Save(ctx, cartIDFromContext(r.Context()), &info); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	respondJSON(w, http.StatusOK, info)
}

type ConfirmResponse struct {
	OK      bool `json:"ok"`
	Emailed bool `json:"emailed"`
}

// ConfirmOrder implements GET /api/confirm-order?session_id=...
func (h *CheckoutHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("sessionId")
	}

	if err := h.confirms.Confirm(ctx, sessionID); err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ConfirmResponse{OK: true, Emailed: true})
}

// respondCheckoutError maps the error taxonomy onto HTTP statuses with
// the `error` JSON envelope.
func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var upstream *payments.UpstreamError

	switch {
	case errors.Is(err, payments.ErrNoItems):
		respondError(w, http.StatusBadRequest, "No items in request.")
	case errors.Is(err, payments.ErrMissingSession):
		respondError(w, http.StatusBadRequest, "Missing session_id")
	case errors.Is(err, payments.ErrPaymentIncomplete):
		respondError(w, http.StatusBadRequest, "Payment not completed")
	case errors.As(err, &upstream):
		respondError(w, http.StatusInternalServerError, upstream.Err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
