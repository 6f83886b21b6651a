package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_AccumulatesSameIdentity(t *testing.T) {
	cart := &Cart{}
	item := CartItem{Name: "Shirt", Price: "$20.00", Color: "Red", Size: "M", Image: "shirt.jpg"}

	cart.Add(item)
	cart.Add(item)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAdd_DifferentIdentityAppends(t *testing.T) {
	cart := &Cart{}
	cart.Add(CartItem{Name: "Shirt", Price: "$20.00", Color: "Red", Size: "M"})
	cart.Add(CartItem{Name: "Shirt", Price: "$20.00", Color: "Blue", Size: "M"})
	cart.Add(CartItem{Name: "Shirt", Price: "$20.00", Color: "Red", Size: "L"})

	require.Len(t, cart.Items, 3)
	for _, item := range cart.Items {
		assert.GreaterOrEqual(t, item.Quantity, 1)
	}
}

func TestAdd_NoDuplicateIdentitiesEver(t *testing.T) {
	cart := &Cart{}
	items := []CartItem{
		{Name: "Shirt", Color: "Red", Size: "M"},
		{Name: "Shirt", Color: "Red", Size: "M"},
		{Name: "Hat", Color: "", Size: ""},
		{Name: "Shirt", Color: "Blue", Size: "M"},
		{Name: "Hat", Color: "", Size: ""},
		{Name: "Shirt", Color: "Red", Size: "M"},
	}
	for _, it := range items {
		cart.Add(it)
	}

	seen := map[[3]string]bool{}
	for _, it := range cart.Items {
		key := [3]string{it.Name, it.Color, it.Size}
		assert.False(t, seen[key], "duplicate identity %v", key)
		seen[key] = true
		assert.GreaterOrEqual(t, it.Quantity, 1)
	}
}

func TestAdjustQuantity_DecrementToZeroRemoves(t *testing.T) {
	cart := &Cart{}
	cart.Add(CartItem{Name: "Shirt", Price: "$20.00"})
	cart.Add(CartItem{Name: "Hat", Price: "$10.00"})
	require.Len(t, cart.Items, 2)

	cart.AdjustQuantity(0, -1)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Hat", cart.Items[0].Name)
}

func TestAdjustQuantity_IncrementAndDecrement(t *testing.T) {
	cart := &Cart{}
	cart.Add(CartItem{Name: "Shirt", Price: "$20.00"})

	cart.AdjustQuantity(0, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart.AdjustQuantity(0, -1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestAdjustQuantity_OutOfRangeNoop(t *testing.T) {
	cart := &Cart{}
	cart.Add(CartItem{Name: "Shirt"})

	cart.AdjustQuantity(5, 1)
	cart.AdjustQuantity(-1, 1)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestRemove_OutOfRangeNoop(t *testing.T) {
	cart := &Cart{}
	cart.Add(CartItem{Name: "Shirt"})

	cart.Remove(3)
	cart.Remove(-1)
	require.Len(t, cart.Items, 1)

	cart.Remove(0)
	assert.Empty(t, cart.Items)
}

func TestSubtotal(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{Name: "Shirt", Price: "$10.00", Quantity: 2},
		{Name: "Hat", Price: "$5.50", Quantity: 1},
	}}

	assert.InDelta(t, 25.50, cart.Subtotal(), 0.0001)
}

func TestCount(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{Name: "Shirt", Quantity: 2},
		{Name: "Hat", Quantity: 3},
	}}

	assert.Equal(t, 5, cart.Count())
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$45.00", 45.0},
		{"$1,250.99", 1250.99},
		{"USD 5.50", 5.50},
		{"free", 0},
		{"", 0},
		{"$0", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePrice(tt.in), "input %q", tt.in)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Shirt - Red (M)", CartItem{Name: "Shirt", Color: "Red", Size: "M"}.DisplayName())
	assert.Equal(t, "Shirt - Red", CartItem{Name: "Shirt", Color: "Red"}.DisplayName())
	assert.Equal(t, "Shirt (M)", CartItem{Name: "Shirt", Size: "M"}.DisplayName())
	assert.Equal(t, "Shirt", CartItem{Name: "Shirt"}.DisplayName())
}

func TestUnitPriceCents(t *testing.T) {
	assert.Equal(t, int64(2000), CartItem{Price: "$20.00"}.UnitPriceCents())
	assert.Equal(t, int64(1999), CartItem{Price: "$19.99"}.UnitPriceCents())
	assert.Equal(t, int64(0), CartItem{Price: "n/a"}.UnitPriceCents())
}
