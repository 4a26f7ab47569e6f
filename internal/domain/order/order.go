package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "Credit"
	PaymentPix    PaymentMethod = "Pix"
	PaymentMana   PaymentMethod = "Mana"
)

// ShippingType identifies the delivery option selected for an order.
type ShippingType string

const (
	ShippingNormal   ShippingType = "Normal"
	ShippingExpress  ShippingType = "Express"
	ShippingTeleport ShippingType = "Teleport"
)

var (
	// ErrEmptyItems is returned when an order carries no line items.
	ErrEmptyItems = errors.New("items required")
	// ErrUnknownPaymentMethod is returned by ParsePaymentMethod for tags
	// outside the supported set.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	// ErrValueOutOfRange is returned for line-item values too large or too
	// precise to be priced.
	ErrValueOutOfRange = errors.New("value out of range")
)

// Line-item values must stay below 10^MaxValueDigits and carry at most
// MaxValueScale decimal places.
const (
	MaxValueDigits = 15
	MaxValueScale  = 8
)

// InvalidValueError indicates a line item has a negative value.
type InvalidValueError struct {
	Name string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("value must not be negative for item %q", e.Name)
}

// LineItem is a single named entry of an order.
type LineItem struct {
	Name  string
	Value decimal.Decimal
}

// Order is the input of a single checkout attempt.
type Order struct {
	Items         []LineItem
	PaymentMethod PaymentMethod
	ShippingType  ShippingType
	GiftWrap      bool
}

// Validate reports whether the order can be priced.
func (o Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyItems
	}
	for _, item := range o.Items {
		if item.Value.IsNegative() {
			return &InvalidValueError{Name: item.Name}
		}
		if !InRange(item.Value) {
			return errors.Wrapf(ErrValueOutOfRange, "item %q", item.Name)
		}
	}
	return nil
}

// InRange reports whether v can be priced. It only inspects the exponent and
// the coefficient length, so it is cheap even for values like 1e2000000000
// whose rescaling would not be.
func InRange(v decimal.Decimal) bool {
	exp := int64(v.Exponent())
	if exp < -MaxValueScale {
		return false
	}
	return int64(v.NumDigits())+exp <= MaxValueDigits
}

// BaseValue returns the sum of all line-item values.
func (o Order) BaseValue() decimal.Decimal {
	return SumItems(o.Items)
}

// SumItems returns the sum of the given line-item values.
func SumItems(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Value)
	}
	return sum
}

var paymentAliases = map[string]PaymentMethod{
	"credit":  PaymentCredit,
	"credito": PaymentCredit,
	"crédito": PaymentCredit,
	"pix":     PaymentPix,
	"mana":    PaymentMana,
}

// ParsePaymentMethod maps a case-insensitive tag to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m, ok := paymentAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", errors.Wrapf(ErrUnknownPaymentMethod, "%q", s)
	}
	return m, nil
}

var shippingAliases = map[string]ShippingType{
	"normal":         ShippingNormal,
	"express":        ShippingExpress,
	"expresso":       ShippingExpress,
	"teleport":       ShippingTeleport,
	"teletransporte": ShippingTeleport,
}

// ParseShippingType maps a case-insensitive tag to a known ShippingType.
// The second result is false for tags outside the supported set, in which
// case the raw tag is returned unchanged so the caller can decide how to
// treat it.
func ParseShippingType(s string) (ShippingType, bool) {
	t, ok := shippingAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return ShippingType(s), false
	}
	return t, true
}
