package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ryghoul/akobylee/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError carries the single user-facing message for the first
// rule that failed. Validation is deliberately fail-fast: the form shows
// one message at a time.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func requiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("Please enter your %s.", strings.ReplaceAll(field, "_", " ")),
	}
}

// ValidateCustomer trims every field in place and returns the first
// failing rule, or nil when the record is submittable.
func ValidateCustomer(c *domain.CustomerInfo) *ValidationError {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address.Line1 = strings.TrimSpace(c.Address.Line1)
	c.Address.Line2 = strings.TrimSpace(c.Address.Line2)
	c.Address.City = strings.TrimSpace(c.Address.City)
	c.Address.State = strings.TrimSpace(c.Address.State)
	c.Address.PostalCode = strings.TrimSpace(c.Address.PostalCode)
	c.Address.Country = strings.TrimSpace(c.Address.Country)

	required := []struct {
		field string
		value string
	}{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"line1", c.Address.Line1},
		{"city", c.Address.City},
		{"state", c.Address.State},
		{"postal_code", c.Address.PostalCode},
		{"country", c.Address.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return requiredFieldError(r.field)
		}
	}

	if !emailPattern.MatchString(c.Email) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address."}
	}

	if len(digitsOnly(c.Phone)) < 7 {
		return &ValidationError{Field: "phone", Message: "Please enter a valid phone number."}
	}

	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
