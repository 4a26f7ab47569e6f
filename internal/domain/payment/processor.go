package payment

import "github.com/shopspring/decimal"

// Processor runs payments through a swappable strategy. It is not safe for
// concurrent use.
type Processor struct {
	strategy Strategy
}

// NewProcessor returns a Processor using s. A nil s leaves the processor
// without a strategy.
func NewProcessor(s Strategy) *Processor {
	return &Processor{strategy: s}
}

// SetStrategy replaces the current strategy.
func (p *Processor) SetStrategy(s Strategy) {
	p.strategy = s
}

// Process authorizes amount with the current strategy. It returns
// ErrStrategyUndefined when no strategy is set; a rejection is reported in
// the Decision with a nil error.
func (p *Processor) Process(amount decimal.Decimal) (Decision, error) {
	if p.strategy == nil {
		return Decision{}, ErrStrategyUndefined
	}
	return p.strategy.Authorize(amount), nil
}
