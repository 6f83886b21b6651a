package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ryghoul/akobylee/internal/relay"
)

type RelayHandler struct {
	relay   *relay.Service
	timeout time.Duration
}

func NewRelayHandler(svc *relay.Service, timeout time.Duration) *RelayHandler {
	return &RelayHandler{relay: svc, timeout: timeout}
}

// Contact implements POST /contact.
func (h *RelayHandler) Contact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var sub relay.ContactSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondMessage(w, http.StatusBadRequest, "Name, email, and message are required.")
		return
	}

	msg, err := h.relay.SubmitContact(ctx, clientIP(r), sub)
	if err != nil {
		h.respondRelayError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, msg)
}

// Reserve implements POST /reserve.
func (h *RelayHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var sub relay.ReservationSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondMessage(w, http.StatusBadRequest, "Name, email, date, time, and party size are required.")
		return
	}

	msg, err := h.relay.SubmitReservation(ctx, clientIP(r), sub)
	if err != nil {
		h.respondRelayError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, msg)
}

func (h *RelayHandler) respondRelayError(w http.ResponseWriter, err error) {
	var invalid *relay.InvalidInputError

	switch {
	case errors.Is(err, relay.ErrRateLimited):
		respondMessage(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &invalid):
		respondMessage(w, http.StatusBadRequest, invalid.Message)
	default:
		log.Printf("relay error: %v", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to send email. Check server logs.")
	}
}
