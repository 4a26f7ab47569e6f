package checkout

import (
	"github.com/go-faster/errors"

	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/payment"
	"github.com/xenking/kart-checkout/internal/domain/pricing"
)

// plan is a priced order together with the payment strategy that settles it.
type plan struct {
	quote   Quote
	payment payment.Strategy
}

// Quote validates and prices the order without any side effects.
func (f *Facade) Quote(o order.Order) (Quote, error) {
	if err := o.Validate(); err != nil {
		return Quote{}, err
	}
	p, err := f.plan(o)
	if err != nil {
		return Quote{}, err
	}
	return p.quote, nil
}

// plan resolves the strategies for the order's tags and computes the final
// value: base, discount, shipping on the discounted value, gift wrap fee.
func (f *Facade) plan(o order.Order) (plan, error) {
	pay, err := f.payments.Strategy(o.PaymentMethod)
	if err != nil {
		return plan{}, errors.Wrap(err, "resolve payment")
	}
	ship, err := f.shipping(o.ShippingType)
	if err != nil {
		return plan{}, errors.Wrap(err, "resolve shipping")
	}

	base := pricing.NewBase(o.Items)
	q := Quote{Base: base.Value()}

	// The registry accepted the tag, so it parses.
	method, _ := order.ParsePaymentMethod(string(o.PaymentMethod))

	var discounted pricing.Component
	if method == order.PaymentPix {
		discounted = pricing.NewPixDiscount(base)
		q.DiscountKind = DiscountPix
	} else {
		discounted = pricing.NewBulkOrderDiscount(base)
	}
	q.Discounted = discounted.Value()
	q.Discount = q.Base.Sub(q.Discounted)
	if q.DiscountKind == DiscountNone && q.Discount.IsPositive() {
		q.DiscountKind = DiscountBulk
	}

	q.Shipping = ship.Cost(q.Discounted)

	var total pricing.Component = pricing.Fixed(q.Discounted.Add(q.Shipping))
	if o.GiftWrap {
		total = pricing.NewGiftWrapFee(total)
		q.GiftWrap = pricing.GiftWrapAmount
	}
	q.Total = pricing.RoundCents(total.Value())

	return plan{quote: q, payment: pay}, nil
}
