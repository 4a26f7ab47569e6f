// Package payment holds the payment authorization strategies.
package payment

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/order"
)

var (
	// ErrStrategyUndefined is returned when a payment is processed before a
	// strategy was selected. It signals a caller bug, not a rejection.
	ErrStrategyUndefined = errors.New("payment strategy not defined")
	// ErrUnknownMethod is returned by Registry for unregistered methods.
	ErrUnknownMethod = errors.New("unknown payment method")
)

// DefaultCreditLimit is the amount at or above which credit payments are
// rejected.
var DefaultCreditLimit = decimal.NewFromInt(1000)

// ReasonLimitExceeded is the rejection reason of credit payments over the limit.
const ReasonLimitExceeded = "limit exceeded"

// Decision is the outcome of a payment authorization.
type Decision struct {
	Approved bool
	Reason   string
}

func approved() Decision { return Decision{Approved: true} }

// Strategy authorizes a payment of the given amount.
type Strategy interface {
	Authorize(amount decimal.Decimal) Decision
}

// Credit approves amounts strictly below Limit.
type Credit struct {
	Limit decimal.Decimal
}

func (c Credit) Authorize(amount decimal.Decimal) Decision {
	if amount.LessThan(c.Limit) {
		return approved()
	}
	return Decision{Reason: ReasonLimitExceeded}
}

// Pix approves every payment.
type Pix struct{}

func (Pix) Authorize(decimal.Decimal) Decision { return approved() }

// Mana approves every payment.
type Mana struct{}

func (Mana) Authorize(decimal.Decimal) Decision { return approved() }

// Registry maps payment methods to their strategies.
type Registry struct {
	strategies map[order.PaymentMethod]Strategy
}

// NewRegistry returns a Registry with Credit, Pix and Mana registered. A
// zero creditLimit selects DefaultCreditLimit.
func NewRegistry(creditLimit decimal.Decimal) *Registry {
	if creditLimit.IsZero() {
		creditLimit = DefaultCreditLimit
	}
	return &Registry{
		strategies: map[order.PaymentMethod]Strategy{
			order.PaymentCredit: Credit{Limit: creditLimit},
			order.PaymentPix:    Pix{},
			order.PaymentMana:   Mana{},
		},
	}
}

// Strategy returns the strategy registered for m. Tags are matched through
// order.ParsePaymentMethod.
func (r *Registry) Strategy(m order.PaymentMethod) (Strategy, error) {
	known, err := order.ParsePaymentMethod(string(m))
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownMethod, "%q", m)
	}
	s, ok := r.strategies[known]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMethod, "%q", m)
	}
	return s, nil
}
