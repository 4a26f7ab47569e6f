// Package checkout sequences validation, pricing, payment and the order side
// effects behind a single entry point.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/order"
)

// Status is the outcome of a checkout attempt.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
	StatusFailed    Status = "FAILED"
)

var (
	// ErrStockNotDeducted is returned when the inventory refuses a deduction.
	ErrStockNotDeducted = errors.New("stock not deducted")
	// ErrNotRecorded is returned when the transaction log refuses a write.
	ErrNotRecorded = errors.New("transaction not recorded")
	// ErrTransactionNotFound is returned by TransactionReader for unknown orders.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// DiscountKind names the discount rule applied to an order.
type DiscountKind string

const (
	DiscountNone DiscountKind = ""
	DiscountPix  DiscountKind = "pix"
	DiscountBulk DiscountKind = "bulk"
)

// Quote is the pricing breakdown of an order. Total is rounded to cents;
// the intermediate amounts are exact.
type Quote struct {
	Base         decimal.Decimal
	DiscountKind DiscountKind
	Discount     decimal.Decimal
	Discounted   decimal.Decimal
	Shipping     decimal.Decimal
	GiftWrap     decimal.Decimal
	Total        decimal.Decimal
}

// Snapshot is the view of a checkout handed to the invoice and transaction
// log collaborators.
type Snapshot struct {
	OrderID   string
	Order     order.Order
	Quote     Quote
	InvoiceID string
	// Reason is set on FAILED records.
	Reason string
}

// Result reports the outcome of Facade.Checkout.
type Result struct {
	OrderID   string
	Status    Status
	Quote     Quote
	InvoiceID string
	Reason    string
}

// FormatInvoiceID renders an invoice number as "NF-e 000000001".
func FormatInvoiceID(number int64) string {
	return fmt.Sprintf("NF-e %09d", number)
}

// Inventory deducts stock for sold items.
type Inventory interface {
	DeductStock(ctx context.Context, items []order.LineItem) (bool, error)
}

// Invoicer issues invoices and returns their identifier.
type Invoicer interface {
	IssueInvoice(ctx context.Context, snap *Snapshot) (string, error)
}

// TransactionLog appends the final status of a checkout.
type TransactionLog interface {
	Record(ctx context.Context, snap *Snapshot, status Status) (bool, error)
}

// TransactionRecord is a single entry of the transaction log.
type TransactionRecord struct {
	OrderID       string
	Status        Status
	PaymentMethod order.PaymentMethod
	Total         decimal.Decimal
	InvoiceID     string
	Reason        string
	RecordedAt    time.Time
}

// NewTransactionRecord builds the log entry for snap.
func NewTransactionRecord(snap *Snapshot, status Status, at time.Time) TransactionRecord {
	return TransactionRecord{
		OrderID:       snap.OrderID,
		Status:        status,
		PaymentMethod: snap.Order.PaymentMethod,
		Total:         snap.Quote.Total,
		InvoiceID:     snap.InvoiceID,
		Reason:        snap.Reason,
		RecordedAt:    at,
	}
}

// TransactionReader lists the log entries of an order, oldest first. It
// returns ErrTransactionNotFound when the order has none.
type TransactionReader interface {
	History(ctx context.Context, orderID string) ([]TransactionRecord, error)
}
