// Package pricing computes order values by wrapping a base component in
// discount and fee decorators.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/order"
)

// Component produces a monetary value for an order.
type Component interface {
	Value() decimal.Decimal
}

// ComponentFunc adapts a plain function to Component.
type ComponentFunc func() decimal.Decimal

// Value calls f.
func (f ComponentFunc) Value() decimal.Decimal { return f() }

// Base is the undecorated order value: the sum of its line items.
type Base struct {
	items []order.LineItem
}

// NewBase returns a Base over the given line items.
func NewBase(items []order.LineItem) Base {
	return Base{items: items}
}

// Value returns the sum of all line-item values.
func (b Base) Value() decimal.Decimal {
	return order.SumItems(b.items)
}

// Fixed is a component holding an already computed amount.
type Fixed decimal.Decimal

// Value returns the held amount.
func (f Fixed) Value() decimal.Decimal { return decimal.Decimal(f) }

// Decorator wraps a component with another one.
type Decorator func(inner Component) Component

// Chain wraps base with the given decorators. The first decorator wraps base
// directly and the last one is outermost, so it is applied last.
func Chain(base Component, decorators ...Decorator) Component {
	c := base
	for _, d := range decorators {
		c = d(c)
	}
	return c
}

// RoundCents rounds an amount to two decimal places, half away from zero.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
