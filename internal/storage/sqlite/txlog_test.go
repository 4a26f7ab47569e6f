package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

func openTestLog(t *testing.T) *TransactionLog {
	t.Helper()

	l, err := Open(filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestTransactionLog_RoundTrip(t *testing.T) {
	l := openTestLog(t)
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 123, time.UTC)
	l.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	require.NoError(t, l.Ping(ctx))

	snap := &checkout.Snapshot{
		OrderID:   "o1",
		Order:     order.Order{PaymentMethod: order.PaymentCredit},
		Quote:     checkout.Quote{Total: decimal.RequireFromString("609.00")},
		InvoiceID: "NF-e 000000001",
	}
	ok, err := l.Record(ctx, snap, checkout.StatusCompleted)
	require.NoError(t, err)
	require.True(t, ok)

	snap.Reason = "record transaction: disk full"
	_, err = l.Record(ctx, snap, checkout.StatusFailed)
	require.NoError(t, err)

	got, err := l.History(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, checkout.StatusCompleted, got[0].Status)
	assert.Equal(t, order.PaymentCredit, got[0].PaymentMethod)
	assert.True(t, decimal.RequireFromString("609").Equal(got[0].Total))
	assert.Equal(t, "NF-e 000000001", got[0].InvoiceID)
	assert.True(t, fixedNow.Equal(got[0].RecordedAt))

	assert.Equal(t, checkout.StatusFailed, got[1].Status)
	assert.Equal(t, "record transaction: disk full", got[1].Reason)
}

func TestTransactionLog_HistoryNotFound(t *testing.T) {
	l := openTestLog(t)

	_, err := l.History(context.Background(), "missing")
	require.ErrorIs(t, err, checkout.ErrTransactionNotFound)
}

func TestTransactionLog_EmptySnapshot(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	snap := &checkout.Snapshot{OrderID: "o2"}
	for _, status := range []checkout.Status{checkout.StatusCompleted, checkout.StatusFailed} {
		_, err := l.Record(ctx, snap, status)
		require.NoError(t, err)
	}

	got, err := l.History(ctx, "o2")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, decimal.Zero.Equal(got[0].Total))
}
