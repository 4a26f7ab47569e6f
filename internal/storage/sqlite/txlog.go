// Package sqlite provides a SQLite-backed checkout transaction log.
//
// WAL mode is enabled on Open so the HTTP handlers can read the history while
// a checkout appends to it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id        TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    payment_method  TEXT    NOT NULL DEFAULT '',
    -- Decimal string, SQLite has no exact numeric type.
    total           TEXT    NOT NULL DEFAULT '0',
    invoice_id      TEXT    NOT NULL DEFAULT '',
    reason          TEXT    NOT NULL DEFAULT '',
    recorded_at     TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_order_id ON transactions(order_id, id);
`

const timeLayout = "2006-01-02T15:04:05.999999999Z"

var (
	_ checkout.TransactionLog    = (*TransactionLog)(nil)
	_ checkout.TransactionReader = (*TransactionLog)(nil)
)

// TransactionLog is the SQLite implementation of checkout.TransactionLog.
type TransactionLog struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*TransactionLog, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return New(db), nil
}

// New wraps an already prepared database. The schema is not applied.
func New(db *sql.DB) *TransactionLog {
	return &TransactionLog{db: db, now: time.Now}
}

// Close releases the database connection.
func (l *TransactionLog) Close() error {
	return l.db.Close()
}

// Ping checks the database connection.
func (l *TransactionLog) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Record appends a row for snap with the given status.
func (l *TransactionLog) Record(ctx context.Context, snap *checkout.Snapshot, status checkout.Status) (bool, error) {
	const q = `
		INSERT INTO transactions
			(order_id, status, payment_method, total, invoice_id, reason, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	rec := checkout.NewTransactionRecord(snap, status, l.now())
	_, err := l.db.ExecContext(ctx, q,
		rec.OrderID,
		string(rec.Status),
		string(rec.PaymentMethod),
		rec.Total.String(),
		rec.InvoiceID,
		rec.Reason,
		rec.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: record transaction %q: %w", rec.OrderID, err)
	}
	return true, nil
}

// History returns the rows of orderID, oldest first.
func (l *TransactionLog) History(ctx context.Context, orderID string) ([]checkout.TransactionRecord, error) {
	const q = `
		SELECT order_id, status, payment_method, total, invoice_id, reason, recorded_at
		FROM   transactions
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := l.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history of %q: %w", orderID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []checkout.TransactionRecord
	for rows.Next() {
		var (
			rec        checkout.TransactionRecord
			status     string
			method     string
			total      string
			recordedAt string
		)
		if err := rows.Scan(&rec.OrderID, &status, &method, &total, &rec.InvoiceID, &rec.Reason, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan transaction: %w", err)
		}
		rec.Status = checkout.Status(status)
		rec.PaymentMethod = order.PaymentMethod(method)
		if rec.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("sqlite: parse total %q: %w", total, err)
		}
		if rec.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse time %q: %w", recordedAt, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate transactions: %w", err)
	}
	if len(out) == 0 {
		return nil, checkout.ErrTransactionNotFound
	}
	return out, nil
}
