package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
)

const insertInvoiceSQL = `INSERT INTO invoices (order_id, items, total)
	VALUES ($1, $2, $3) RETURNING number`

var _ checkout.Invoicer = (*Invoicer)(nil)

// invoiceItem is the JSONB shape of an invoiced line item.
type invoiceItem struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Invoicer implements checkout.Invoicer by numbering invoices with a
// PostgreSQL sequence.
type Invoicer struct {
	pool *pgxpool.Pool
}

// NewInvoicer returns an Invoicer that uses the given pool.
func NewInvoicer(pool *pgxpool.Pool) *Invoicer {
	return &Invoicer{pool: pool}
}

// IssueInvoice stores the invoice and returns its formatted number.
func (i *Invoicer) IssueInvoice(ctx context.Context, snap *checkout.Snapshot) (string, error) {
	items := make([]invoiceItem, len(snap.Order.Items))
	for idx, item := range snap.Order.Items {
		items[idx] = invoiceItem{Name: item.Name, Value: item.Value}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshaling invoice items: %w", err)
	}

	var number int64
	if err := i.pool.QueryRow(ctx, insertInvoiceSQL,
		snap.OrderID, itemsJSON, snap.Quote.Total,
	).Scan(&number); err != nil {
		return "", fmt.Errorf("issuing invoice for order %q: %w", snap.OrderID, err)
	}

	return checkout.FormatInvoiceID(number), nil
}
