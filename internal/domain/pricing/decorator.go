package pricing

import "github.com/shopspring/decimal"

var (
	// PixDiscountRate is the share taken off by PixDiscount.
	PixDiscountRate = decimal.RequireFromString("0.05")
	// BulkDiscountRate is the share taken off by BulkOrderDiscount.
	BulkDiscountRate = decimal.RequireFromString("0.10")
	// BulkThreshold is the value an order must exceed to get the bulk discount.
	BulkThreshold = decimal.NewFromInt(500)
	// GiftWrapAmount is the flat fee added by GiftWrapFee.
	GiftWrapAmount = decimal.RequireFromString("5.00")

	one = decimal.NewFromInt(1)
)

// PixDiscount takes 5% off the wrapped value.
type PixDiscount struct {
	inner Component
}

// NewPixDiscount wraps inner with the PIX discount.
func NewPixDiscount(inner Component) Component {
	return PixDiscount{inner: inner}
}

// Value returns inner * 0.95.
func (p PixDiscount) Value() decimal.Decimal {
	return p.inner.Value().Mul(one.Sub(PixDiscountRate))
}

// BulkOrderDiscount takes 10% off when the wrapped value exceeds
// BulkThreshold and passes it through otherwise.
type BulkOrderDiscount struct {
	inner Component
}

// NewBulkOrderDiscount wraps inner with the bulk order discount.
func NewBulkOrderDiscount(inner Component) Component {
	return BulkOrderDiscount{inner: inner}
}

// Value returns inner * 0.90 above the threshold, inner otherwise.
func (b BulkOrderDiscount) Value() decimal.Decimal {
	v := b.inner.Value()
	if !v.GreaterThan(BulkThreshold) {
		return v
	}
	return v.Mul(one.Sub(BulkDiscountRate))
}

// GiftWrapFee adds a flat packaging fee to the wrapped value.
type GiftWrapFee struct {
	inner Component
}

// NewGiftWrapFee wraps inner with the gift wrap fee.
func NewGiftWrapFee(inner Component) Component {
	return GiftWrapFee{inner: inner}
}

// Value returns inner + 5.00.
func (g GiftWrapFee) Value() decimal.Decimal {
	return g.inner.Value().Add(GiftWrapAmount)
}

// Compile-time checks that the decorator constructors fit Decorator.
var (
	_ Decorator = NewPixDiscount
	_ Decorator = NewBulkOrderDiscount
	_ Decorator = NewGiftWrapFee
)
