package relay

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ryghoul/akobylee/internal/mailer"
)

var (
	ErrRateLimited = errors.New("Please wait before sending again.")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// InvalidInputError carries the user-facing validation message.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// ContactSubmission is the contact form body. Website is the hidden
// honeypot field legitimate users never fill.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Website string `json:"website,omitempty"`
}

// ReservationSubmission is the reservation form body.
type ReservationSubmission struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"partySize"`
	Notes     string `json:"notes,omitempty"`
	Website   string `json:"website,omitempty"`
}

// Service validates form submissions and forwards them to the operator's
// inbox with the submitter as reply-to.
type Service struct {
	mailer   mailer.Mailer
	throttle Throttle
	toEmail  string
}

func NewService(m mailer.Mailer, throttle Throttle, toEmail string) *Service {
	return &Service{
		mailer:   m,
		throttle: throttle,
		toEmail:  toEmail,
	}
}

// SubmitContact returns the user-facing acknowledgement, or an error from
// the taxonomy (rate limited, invalid input, upstream send failure). A
// populated honeypot is acknowledged without sending anything, so
// automated senders learn nothing.
func (s *Service) SubmitContact(ctx context.Context, source string, sub ContactSubmission) (string, error) {
	allowed, err := s.throttle.Allow(ctx, source)
	if err != nil {
		return "", fmt.Errorf("throttle check failed: %w", err)
	}
	if !allowed {
		return "", ErrRateLimited
	}

	name := clean(sub.Name, 80)
	email := clean(sub.Email, 254)
	message := clean(sub.Message, 4000)
	honey := clean(sub.Website, 50)

	if honey != "" {
		return "Thanks!", nil // silently drop bots
	}
	if name == "" || email == "" || message == "" {
		return "", &InvalidInputError{Message: "Name, email, and message are required."}
	}
	if !emailPattern.MatchString(email) {
		return "", &InvalidInputError{Message: "Please provide a valid email address."}
	}

	msg := mailer.Message{
		To:      s.toEmail,
		ReplyTo: email,
		Subject: fmt.Sprintf("New message from %s", name),
		Body:    fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", name, email, message),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send contact email: %w", err)
	}

	return "Thanks! Your message has been sent.", nil
}

// SubmitReservation relays a reservation request the same way.
func (s *Service) SubmitReservation(ctx context.Context, source string, sub ReservationSubmission) (string, error) {
	allowed, err := s.throttle.Allow(ctx, source)
	if err != nil {
		return "", fmt.Errorf("throttle check failed: %w", err)
	}
	if !allowed {
		return "", ErrRateLimited
	}

	name := clean(sub.Name, 80)
	email := clean(sub.Email, 254)
	date := clean(sub.Date, 40)
	timeOfDay := clean(sub.Time, 40)
	notes := clean(sub.Notes, 4000)
	honey := clean(sub.Website, 50)

	if honey != "" {
		return "Thanks!", nil
	}
	if name == "" || email == "" || date == "" || timeOfDay == "" || sub.PartySize < 1 {
		return "", &InvalidInputError{Message: "Name, email, date, time, and party size are required."}
	}
	if !emailPattern.MatchString(email) {
		return "", &InvalidInputError{Message: "Please provide a valid email address."}
	}

	body := fmt.Sprintf("Name: %s\nEmail: %s\nDate: %s\nTime: %s\nParty size: %d", name, email, date, timeOfDay, sub.PartySize)
	if notes != "" {
		body += fmt.Sprintf("\n\nNotes:\n%s", notes)
	}

	msg := mailer.Message{
		To:      s.toEmail,
		ReplyTo: email,
		Subject: fmt.Sprintf("New reservation from %s", name),
		Body:    body,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send reservation email: %w", err)
	}

	return "Thanks! Your reservation request has been sent.", nil
}

// clean strips control characters, caps the length, and trims whitespace.
func clean(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		if r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > max {
		out = out[:max]
	}
	return strings.TrimSpace(out)
}
