package checkout

import (
	"errors"

	"github.com/ryghoul/akobylee/internal/domain"
)

// FormState is the checkout form's lifecycle state. The form is a
// two-state machine: closed until opened over a non-empty cart, open
// until cancelled or the browser navigates to payment.
type FormState int

const (
	StateClosed FormState = iota
	StateOpen
)

var (
	ErrEmptyCart        = errors.New("your cart is empty")
	ErrFormClosed       = errors.New("checkout form is not open")
	ErrTermsNotAccepted = errors.New("Please agree to the Terms & Conditions.")
)

// Payload is the checkout request body: cart lines plus the shipping
// line, and the customer record.
type Payload struct {
	Items    []domain.CheckoutLineItem `json:"items"`
	Customer domain.CustomerInfo       `json:"customer"`
}

// Form drives the checkout dialog independent of any rendering
// technology: open it over a cart, switch shipping zones for a live
// summary, then submit validated customer data into a session payload.
type Form struct {
	state FormState
	cart  *domain.Cart
	zone  domain.ShippingZone

	// Prefill carried from a previous visit, exposed to the renderer.
	Prefill domain.CustomerInfo
}

func NewForm() *Form {
	return &Form{state: StateClosed, zone: domain.ZoneUS}
}

func (f *Form) State() FormState {
	return f.state
}

// Open rejects empty carts, prefills from a saved customer record when
// one exists, and returns the summary for the selected zone (defaulting
// to US).
func (f *Form) Open(cart *domain.Cart, saved *domain.CustomerInfo) (Summary, error) {
	if cart == nil || cart.Empty() {
		return Summary{}, ErrEmptyCart
	}

	f.cart = cart
	f.zone = domain.ZoneUS
	f.Prefill = domain.CustomerInfo{ShippingZone: domain.ZoneUS, Address: domain.Address{Country: "US"}}
	if saved != nil {
		f.Prefill = *saved
		if saved.ShippingZone != "" {
			f.zone = saved.ShippingZone
		}
	}

	f.state = StateOpen
	return Summarize(f.cart, f.zone), nil
}

func (f *Form) Close() {
	f.state = StateClosed
	f.cart = nil
}

// SelectZone switches the shipping zone and recomputes the summary
// without closing the form.
func (f *Form) SelectZone(zone domain.ShippingZone) (Summary, error) {
	if f.state != StateOpen {
		return Summary{}, ErrFormClosed
	}
	f.zone = zone
	return Summarize(f.cart, f.zone), nil
}

// Submit validates and converts the form into a checkout payload. The
// form stays open on failure so the user can correct and retry without
// losing state.
func (f *Form) Submit(customer domain.CustomerInfo, termsAccepted bool) (*Payload, error) {
	if f.state != StateOpen {
		return nil, ErrFormClosed
	}

	if !termsAccepted {
		return nil, ErrTermsNotAccepted
	}
	if verr := ValidateCustomer(&customer); verr != nil {
		return nil, verr
	}

	if customer.ShippingZone != "" {
		f.zone = customer.ShippingZone
	}
	customer.ShippingZone = f.zone

	return &Payload{
		Items:    BuildLineItems(f.cart, f.zone),
		Customer: customer,
	}, nil
}
