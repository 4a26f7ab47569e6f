// Command checkout-demo runs the sample orders through an in-memory checkout
// and walks the shipping and payment strategies one by one.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/payment"
	"github.com/xenking/kart-checkout/internal/domain/pricing"
	"github.com/xenking/kart-checkout/internal/domain/shipping"
	"github.com/xenking/kart-checkout/internal/storage/memory"
)

var sampleOrders = []order.Order{
	{
		Items: []order.LineItem{
			{Name: "Capa da Invisibilidade", Value: decimal.RequireFromString("150.00")},
			{Name: "Poção de Voo", Value: decimal.RequireFromString("80.00")},
		},
		PaymentMethod: order.PaymentPix,
		ShippingType:  order.ShippingNormal,
	},
	{
		Items: []order.LineItem{
			{Name: "Cristal Mágico", Value: decimal.RequireFromString("600.00")},
		},
		PaymentMethod: "Credito",
		ShippingType:  "Expresso",
		GiftWrap:      true,
	},
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		ctx = zctx.Base(ctx, lg)

		if err := runOrders(ctx, m); err != nil {
			return err
		}
		runDecorators(lg)
		if err := runShipping(lg); err != nil {
			return err
		}
		return runPayments(lg)
	})
}

func runOrders(ctx context.Context, m *app.Telemetry) error {
	f, err := checkout.NewFacade(
		memory.NewInventory(),
		memory.NewInvoicer(),
		memory.NewTransactionLog(),
		payment.NewRegistry(payment.DefaultCreditLimit),
		shipping.StrictResolver(),
		checkout.WithTracerProvider(m.TracerProvider()),
		checkout.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create facade")
	}

	lg := zctx.From(ctx)
	for i, o := range sampleOrders {
		ok := f.ProcessCheckout(ctx, o)
		lg.Info("Sample order processed", zap.Int("order", i+1), zap.Bool("completed", ok))
	}
	return nil
}

// runDecorators shows that stacking order changes the result.
func runDecorators(lg *zap.Logger) {
	items := sampleOrders[1].Items
	base := pricing.NewBase(items)

	lg.Info("Decorator stacking",
		zap.Stringer("bulk_over_gift", pricing.Chain(base, pricing.NewGiftWrapFee, pricing.NewBulkOrderDiscount).Value()),
		zap.Stringer("gift_over_bulk", pricing.Chain(base, pricing.NewBulkOrderDiscount, pricing.NewGiftWrapFee).Value()),
	)
}

func runShipping(lg *zap.Logger) error {
	value := decimal.NewFromInt(200)
	calc := shipping.NewCalculator(nil)

	for _, t := range []order.ShippingType{order.ShippingNormal, order.ShippingExpress, order.ShippingTeleport} {
		s, err := shipping.ForType(t)
		if err != nil {
			return err
		}
		calc.SetStrategy(s)

		cost, err := calc.Calculate(value)
		if err != nil {
			return errors.Wrapf(err, "calculate %s", t)
		}
		lg.Info("Shipping cost",
			zap.String("type", string(t)),
			zap.Stringer("value", value),
			zap.Stringer("cost", pricing.RoundCents(cost)),
		)
	}
	return nil
}

func runPayments(lg *zap.Logger) error {
	registry := payment.NewRegistry(payment.DefaultCreditLimit)
	proc := payment.NewProcessor(nil)
	amounts := []decimal.Decimal{decimal.RequireFromString("609.00"), decimal.RequireFromString("1203.00")}

	for _, m := range []order.PaymentMethod{order.PaymentCredit, order.PaymentPix, order.PaymentMana} {
		s, err := registry.Strategy(m)
		if err != nil {
			return err
		}
		proc.SetStrategy(s)

		for _, amount := range amounts {
			d, err := proc.Process(amount)
			if err != nil {
				return errors.Wrapf(err, "process %s", m)
			}
			lg.Info("Payment decision",
				zap.String("method", string(m)),
				zap.Stringer("amount", amount),
				zap.Bool("approved", d.Approved),
				zap.String("reason", d.Reason),
			)
		}
	}
	return nil
}
