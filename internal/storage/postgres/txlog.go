package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

const (
	insertTransactionSQL = `INSERT INTO transactions
		(order_id, status, payment_method, total, invoice_id, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listTransactionsSQL = `SELECT order_id, status, payment_method, total, invoice_id, reason, recorded_at
		FROM transactions WHERE order_id = $1 ORDER BY id`
)

var (
	_ checkout.TransactionLog    = (*TransactionLog)(nil)
	_ checkout.TransactionReader = (*TransactionLog)(nil)
)

// TransactionLog implements checkout.TransactionLog backed by PostgreSQL.
type TransactionLog struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewTransactionLog returns a TransactionLog that uses the given pool.
func NewTransactionLog(pool *pgxpool.Pool) *TransactionLog {
	return &TransactionLog{pool: pool, now: time.Now}
}

// Record appends a row for snap with the given status.
func (l *TransactionLog) Record(ctx context.Context, snap *checkout.Snapshot, status checkout.Status) (bool, error) {
	rec := checkout.NewTransactionRecord(snap, status, l.now())

	_, err := l.pool.Exec(ctx, insertTransactionSQL,
		rec.OrderID, string(rec.Status), string(rec.PaymentMethod),
		rec.Total, rec.InvoiceID, rec.Reason, rec.RecordedAt,
	)
	if err != nil {
		return false, fmt.Errorf("recording transaction %q: %w", rec.OrderID, err)
	}
	return true, nil
}

// History returns the rows of orderID, oldest first.
func (l *TransactionLog) History(ctx context.Context, orderID string) ([]checkout.TransactionRecord, error) {
	rows, err := l.pool.Query(ctx, listTransactionsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions of %q: %w", orderID, err)
	}

	records, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("listing transactions of %q: %w", orderID, err)
	}
	if len(records) == 0 {
		return nil, checkout.ErrTransactionNotFound
	}
	return records, nil
}

func scanTransaction(row pgx.CollectableRow) (checkout.TransactionRecord, error) {
	var (
		rec    checkout.TransactionRecord
		status string
		method string
		total  decimal.Decimal
	)
	err := row.Scan(
		&rec.OrderID, &status, &method, &total,
		&rec.InvoiceID, &rec.Reason, &rec.RecordedAt,
	)
	rec.Status = checkout.Status(status)
	rec.PaymentMethod = order.PaymentMethod(method)
	rec.Total = total
	return rec, err
}
