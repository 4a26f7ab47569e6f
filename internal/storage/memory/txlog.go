package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
)

var (
	_ checkout.TransactionLog    = (*TransactionLog)(nil)
	_ checkout.TransactionReader = (*TransactionLog)(nil)
)

// TransactionLog is an append-only in-memory transaction log.
type TransactionLog struct {
	mu      sync.RWMutex
	records []checkout.TransactionRecord
	now     func() time.Time
}

// NewTransactionLog returns an empty TransactionLog.
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{now: time.Now}
}

// Record appends an entry for snap with the given status.
func (l *TransactionLog) Record(ctx context.Context, snap *checkout.Snapshot, status checkout.Status) (bool, error) {
	rec := checkout.NewTransactionRecord(snap, status, l.now())

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()

	zctx.From(ctx).Info("Transaction recorded",
		zap.String("order_id", rec.OrderID),
		zap.String("status", string(status)),
	)
	return true, nil
}

// History returns the entries of orderID, oldest first.
func (l *TransactionLog) History(_ context.Context, orderID string) ([]checkout.TransactionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []checkout.TransactionRecord
	for _, rec := range l.records {
		if rec.OrderID == orderID {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, checkout.ErrTransactionNotFound
	}
	return out, nil
}

// Records returns a copy of every entry, oldest first.
func (l *TransactionLog) Records() []checkout.TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]checkout.TransactionRecord, len(l.records))
	copy(out, l.records)
	return out
}
