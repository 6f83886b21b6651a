package checkout

import (
	"github.com/ryghoul/akobylee/internal/domain"
)

// ShippingRates maps a shipping zone to its flat rate in cents.
var ShippingRates = map[domain.ShippingZone]int64{
	domain.ZoneUS:    500,
	domain.ZoneWorld: 1500,
}

// ShippingRate returns the cents rate for a zone, falling back to the US
// rate for anything unrecognized.
func ShippingRate(zone domain.ShippingZone) int64 {
	if rate, ok := ShippingRates[zone]; ok {
		return rate
	}
	return ShippingRates[domain.ZoneUS]
}

func shippingLineName(zone domain.ShippingZone) string {
	if zone == domain.ZoneWorld {
		return "Shipping (Worldwide)"
	}
	return "Shipping (US)"
}

// BuildLineItems converts cart lines into the checkout payload: display
// name with color/size folded in, unit price in cents, and a synthetic
// shipping line appended for the selected zone.
func BuildLineItems(cart *domain.Cart, zone domain.ShippingZone) []domain.CheckoutLineItem {
	items := make([]domain.CheckoutLineItem, 0, len(cart.Items)+1)
	for _, item := range cart.Items {
		items = append(items, domain.CheckoutLineItem{
			Name:     item.DisplayName(),
			Price:    item.UnitPriceCents(),
			Quantity: int64(item.Quantity),
		})
	}

	items = append(items, domain.CheckoutLineItem{
		Name:     shippingLineName(zone),
		Price:    ShippingRate(zone),
		Quantity: 1,
	})

	return items
}

// Summary is the live subtotal/shipping/total block the form shows.
type Summary struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

// Summarize recomputes the summary for the current cart and zone.
func Summarize(cart *domain.Cart, zone domain.ShippingZone) Summary {
	subtotal := cart.Subtotal()
	shipping := float64(ShippingRate(zone)) / 100

	return Summary{
		Subtotal: domain.FormatPrice(subtotal),
		Shipping: domain.FormatPrice(shipping),
		Total:    domain.FormatPrice(subtotal + shipping),
	}
}
