package domain

// ShippingZone is the coarse shipping bucket the customer selects.
type ShippingZone string

const (
	ZoneUS    ShippingZone = "US"
	ZoneWorld ShippingZone = "WORLD"
)

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CustomerInfo is the checkout contact/shipping record. It is persisted
// only to prefill the form on return visits and is never required for
// correctness.
type CustomerInfo struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	ShippingZone ShippingZone `json:"shippingZone"`
	Address      Address      `json:"address"`
}

// CheckoutLineItem is what the checkout session endpoint accepts: a
// display name with color/size folded in, an integer price in cents and
// a quantity. A synthetic shipping line is always appended client-side.
type CheckoutLineItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}
