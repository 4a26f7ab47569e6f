package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/payment"
	"github.com/xenking/kart-checkout/internal/domain/shipping"
)

const instrumentationName = "github.com/xenking/kart-checkout/internal/domain/checkout"

// Option configures a Facade.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	newID          func() string
}

// WithTracerProvider sets the tracer provider used for checkout spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider used for checkout metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithIDGenerator overrides the order ID generator.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// Facade is the single entry point of the checkout flow. It only holds
// references to its collaborators and is safe for concurrent use when they
// are.
type Facade struct {
	inventory Inventory
	invoices  Invoicer
	txlog     TransactionLog
	payments  *payment.Registry
	shipping  shipping.Resolver
	newID     func() string

	tracer   trace.Tracer
	attempts metric.Int64Counter
	totals   metric.Float64Histogram
}

// NewFacade creates a Facade with the required collaborators.
func NewFacade(
	inventory Inventory,
	invoices Invoicer,
	txlog TransactionLog,
	payments *payment.Registry,
	resolver shipping.Resolver,
	opts ...Option,
) (*Facade, error) {
	o := options{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	attempts, err := meter.Int64Counter("checkout.attempts",
		metric.WithDescription("Checkout attempts by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create attempts counter")
	}
	totals, err := meter.Float64Histogram("checkout.total",
		metric.WithDescription("Final value of completed checkouts"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create totals histogram")
	}

	return &Facade{
		inventory: inventory,
		invoices:  invoices,
		txlog:     txlog,
		payments:  payments,
		shipping:  resolver,
		newID:     o.newID,
		tracer:    o.tracerProvider.Tracer(instrumentationName),
		attempts:  attempts,
		totals:    totals,
	}, nil
}

// ProcessCheckout runs a checkout and reports whether it completed.
func (f *Facade) ProcessCheckout(ctx context.Context, o order.Order) bool {
	res, err := f.Checkout(ctx, o)
	return err == nil && res.Status == StatusCompleted
}

// Checkout validates and prices the order, authorizes the payment and, on
// approval, deducts stock, issues the invoice and records the transaction as
// COMPLETED.
//
// Validation errors are returned before any collaborator is called. A
// payment rejection yields a REJECTED result and a nil error, with no side
// effects. Any other failure, panics included, records the transaction as
// FAILED and is returned together with a FAILED result. Stock and invoice
// are never rolled back.
func (f *Facade) Checkout(ctx context.Context, o order.Order) (res *Result, err error) {
	ctx, span := f.tracer.Start(ctx, "checkout.Process")
	defer span.End()

	if err := o.Validate(); err != nil {
		f.observe(ctx, "invalid")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	snap := &Snapshot{OrderID: f.newID(), Order: o}
	span.SetAttributes(attribute.String("order.id", snap.OrderID))
	ctx = zctx.With(ctx, zap.String("order_id", snap.OrderID))

	defer func() {
		if r := recover(); r != nil {
			zctx.From(ctx).Error("Checkout panicked", zap.Any("panic", r), zap.Stack("stack"))
			res, err = f.fail(ctx, snap, errors.Errorf("panic: %v", r))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	res, err = f.process(ctx, snap)
	if err != nil {
		return f.fail(ctx, snap, err)
	}
	return res, nil
}

func (f *Facade) process(ctx context.Context, snap *Snapshot) (*Result, error) {
	lg := zctx.From(ctx)

	p, err := f.plan(snap.Order)
	if err != nil {
		return nil, err
	}
	snap.Quote = p.quote
	lg.Info("Order priced",
		zap.Stringer("base", p.quote.Base),
		zap.String("discount_kind", string(p.quote.DiscountKind)),
		zap.Stringer("discount", p.quote.Discount),
		zap.Stringer("shipping", p.quote.Shipping),
		zap.Stringer("total", p.quote.Total),
	)

	res := &Result{OrderID: snap.OrderID, Quote: p.quote}

	decision := p.payment.Authorize(p.quote.Total)
	if !decision.Approved {
		lg.Info("Payment rejected",
			zap.String("payment_method", string(snap.Order.PaymentMethod)),
			zap.String("reason", decision.Reason),
		)
		res.Status = StatusRejected
		res.Reason = decision.Reason
		f.observe(ctx, "rejected")
		return res, nil
	}

	ok, err := f.inventory.DeductStock(ctx, snap.Order.Items)
	if err != nil {
		return nil, errors.Wrap(err, "deduct stock")
	}
	if !ok {
		return nil, ErrStockNotDeducted
	}

	invoiceID, err := f.invoices.IssueInvoice(ctx, snap)
	if err != nil {
		return nil, errors.Wrap(err, "issue invoice")
	}
	snap.InvoiceID = invoiceID

	ok, err = f.txlog.Record(ctx, snap, StatusCompleted)
	if err != nil {
		return nil, errors.Wrap(err, "record transaction")
	}
	if !ok {
		return nil, ErrNotRecorded
	}

	res.Status = StatusCompleted
	res.InvoiceID = invoiceID
	f.observe(ctx, "completed")
	f.totals.Record(ctx, p.quote.Total.InexactFloat64(),
		metric.WithAttributes(attribute.String("payment_method", string(snap.Order.PaymentMethod))),
	)
	lg.Info("Checkout completed",
		zap.String("invoice_id", invoiceID),
		zap.Stringer("total", p.quote.Total),
	)
	return res, nil
}

// fail records the transaction as FAILED. A failing or panicking write is
// logged and otherwise ignored.
func (f *Facade) fail(ctx context.Context, snap *Snapshot, cause error) (*Result, error) {
	lg := zctx.From(ctx)
	lg.Error("Checkout failed", zap.Error(cause))

	snap.Reason = cause.Error()
	f.recordFailed(ctx, snap)
	f.observe(ctx, "failed")

	return &Result{
		OrderID:   snap.OrderID,
		Status:    StatusFailed,
		Quote:     snap.Quote,
		InvoiceID: snap.InvoiceID,
		Reason:    cause.Error(),
	}, cause
}

// recordFailed runs inside the deferred recover of Checkout, so a panic here
// must not escape.
func (f *Facade) recordFailed(ctx context.Context, snap *Snapshot) {
	lg := zctx.From(ctx)
	defer func() {
		if r := recover(); r != nil {
			lg.Error("Record failed transaction panicked", zap.Any("panic", r))
		}
	}()

	if _, err := f.txlog.Record(ctx, snap, StatusFailed); err != nil {
		lg.Error("Record failed transaction", zap.Error(err))
	}
}

func (f *Facade) observe(ctx context.Context, outcome string) {
	f.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
