package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	CartID    string     `bson:"cart_id" json:"cart_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"-"`
	UpdatedAt time.Time  `bson:"updated_at" json:"-"`
}

// CartItem is one line of the cart. Identity is (Name, Color, Size);
// repeated adds of the same identity accumulate Quantity.
type CartItem struct {
	Name     string `bson:"name" json:"name"`
	Price    string `bson:"price" json:"price"` // display-formatted, e.g. "$45.00"
	Color    string `bson:"color" json:"color"`
	Size     string `bson:"size" json:"size"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Image    string `bson:"image" json:"image"`
}

// SameIdentity reports whether two items occupy the same cart line.
func (i CartItem) SameIdentity(other CartItem) bool {
	return i.Name == other.Name && i.Color == other.Color && i.Size == other.Size
}

// DisplayName suffixes color and size onto the product name the way the
// shop renders it, e.g. "Shirt - Red (M)".
func (i CartItem) DisplayName() string {
	name := i.Name
	if i.Color != "" {
		name += " - " + i.Color
	}
	if i.Size != "" {
		name += fmt.Sprintf(" (%s)", i.Size)
	}
	return name
}

// UnitPriceCents converts the formatted price into integer cents.
func (i CartItem) UnitPriceCents() int64 {
	return int64(math.Round(ParsePrice(i.Price) * 100))
}

// Add increments the quantity of an existing line with the same identity,
// or appends a new line with quantity 1.
func (c *Cart) Add(item CartItem) {
	for idx := range c.Items {
		if c.Items[idx].SameIdentity(item) {
			c.Items[idx].Quantity++
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// AdjustQuantity applies delta to the line at index. A delta that would
// bring the quantity below 1 removes the line instead. Out-of-range
// indexes are a no-op.
func (c *Cart) AdjustQuantity(index, delta int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	q := c.Items[index].Quantity + delta
	if q < 1 {
		c.Remove(index)
		return
	}
	c.Items[index].Quantity = q
}

// Remove deletes the line at index, silently ignoring out-of-range indexes.
func (c *Cart) Remove(index int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Subtotal sums parsed unit price times quantity, in dollars.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += ParsePrice(item.Price) * float64(item.Quantity)
	}
	return total
}

// Count is the total number of units across all lines, used for the badge.
func (c *Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// ParsePrice extracts a dollar amount from a display-formatted price
// string ("$45.00" -> 45.0). Anything unparsable yields 0; it never fails.
func ParsePrice(price string) float64 {
	var b strings.Builder
	for _, r := range price {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatPrice renders a dollar amount the way the cart panel shows it.
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
