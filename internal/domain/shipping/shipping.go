// Package shipping holds the interchangeable shipping cost strategies.
package shipping

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/order"
)

var (
	// ErrUnknownType is returned by ForType for tags outside the registry.
	ErrUnknownType = errors.New("unknown shipping type")
	// ErrStrategyUndefined is returned by Calculator when no strategy is set.
	ErrStrategyUndefined = errors.New("shipping strategy not defined")
)

var (
	normalRate     = decimal.RequireFromString("0.05")
	expressRate    = decimal.RequireFromString("0.10")
	expressSurplus = decimal.RequireFromString("15.00")
	teleportFlat   = decimal.RequireFromString("50.00")
)

// Strategy computes the shipping cost of an already discounted order value.
type Strategy interface {
	Cost(discounted decimal.Decimal) decimal.Decimal
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(discounted decimal.Decimal) decimal.Decimal

// Cost calls f.
func (f StrategyFunc) Cost(discounted decimal.Decimal) decimal.Decimal { return f(discounted) }

// Normal charges 5% of the discounted value.
type Normal struct{}

func (Normal) Cost(discounted decimal.Decimal) decimal.Decimal {
	return discounted.Mul(normalRate)
}

// Express charges 10% of the discounted value plus a 15.00 surcharge.
type Express struct{}

func (Express) Cost(discounted decimal.Decimal) decimal.Decimal {
	return discounted.Mul(expressRate).Add(expressSurplus)
}

// Teleport charges a flat 50.00.
type Teleport struct{}

func (Teleport) Cost(decimal.Decimal) decimal.Decimal {
	return teleportFlat
}

var registry = map[order.ShippingType]Strategy{
	order.ShippingNormal:   Normal{},
	order.ShippingExpress:  Express{},
	order.ShippingTeleport: Teleport{},
}

// ForType returns the strategy registered for t. Tags are matched
// case-insensitively and aliases are accepted; anything else yields
// ErrUnknownType.
func ForType(t order.ShippingType) (Strategy, error) {
	known, ok := order.ParseShippingType(string(t))
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%q", t)
	}
	return registry[known], nil
}

// ForTypeLenient resolves Normal and Express like ForType and treats every
// other tag as Teleport.
func ForTypeLenient(t order.ShippingType) Strategy {
	s, err := ForType(t)
	if err != nil {
		return Teleport{}
	}
	return s
}

// Resolver picks a strategy for a shipping tag.
type Resolver func(t order.ShippingType) (Strategy, error)

// StrictResolver rejects unknown tags.
func StrictResolver() Resolver {
	return ForType
}

// LenientResolver falls back to Teleport for unknown tags.
func LenientResolver() Resolver {
	return func(t order.ShippingType) (Strategy, error) {
		return ForTypeLenient(t), nil
	}
}
