package shipping

import "github.com/shopspring/decimal"

// Calculator computes shipping with a swappable strategy. A strategy change
// only affects calls made after it. Calculator is not safe for concurrent use.
type Calculator struct {
	strategy Strategy
}

// NewCalculator returns a Calculator using s. A nil s leaves the calculator
// without a strategy until SetStrategy is called.
func NewCalculator(s Strategy) *Calculator {
	return &Calculator{strategy: s}
}

// SetStrategy replaces the current strategy.
func (c *Calculator) SetStrategy(s Strategy) {
	c.strategy = s
}

// Calculate returns the shipping cost for the discounted value using the
// current strategy.
func (c *Calculator) Calculate(discounted decimal.Decimal) (decimal.Decimal, error) {
	if c.strategy == nil {
		return decimal.Zero, ErrStrategyUndefined
	}
	return c.strategy.Cost(discounted), nil
}
