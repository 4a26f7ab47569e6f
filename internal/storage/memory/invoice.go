package memory

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
)

var _ checkout.Invoicer = (*Invoicer)(nil)

// Invoicer issues sequential invoice numbers.
type Invoicer struct {
	seq atomic.Int64
}

// NewInvoicer returns an Invoicer starting at number 1.
func NewInvoicer() *Invoicer {
	return &Invoicer{}
}

// IssueInvoice returns the next invoice number.
func (i *Invoicer) IssueInvoice(ctx context.Context, snap *checkout.Snapshot) (string, error) {
	id := checkout.FormatInvoiceID(i.seq.Add(1))
	zctx.From(ctx).Info("Invoice issued",
		zap.String("invoice_id", id),
		zap.String("order_id", snap.OrderID),
	)
	return id, nil
}
