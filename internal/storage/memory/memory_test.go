package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

func TestInventory_DeductStock(t *testing.T) {
	inv := NewInventory()
	items := []order.LineItem{
		{Name: "Cristal Mágico", Value: decimal.NewFromInt(600)},
		{Name: "Cristal Mágico", Value: decimal.NewFromInt(600)},
		{Name: "Poção de Voo", Value: decimal.NewFromInt(80)},
	}

	ok, err := inv.DeductStock(context.Background(), items)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, inv.Deducted("Cristal Mágico"))
	assert.Equal(t, 1, inv.Deducted("Poção de Voo"))
	assert.Equal(t, 0, inv.Deducted("missing"))
}

func TestInvoicer_Sequential(t *testing.T) {
	inv := NewInvoicer()
	snap := &checkout.Snapshot{OrderID: "o1"}

	first, err := inv.IssueInvoice(context.Background(), snap)
	require.NoError(t, err)
	second, err := inv.IssueInvoice(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, "NF-e 000000001", first)
	assert.Equal(t, "NF-e 000000002", second)
}

func TestTransactionLog_RecordAndHistory(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	l := NewTransactionLog()
	l.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	snap := &checkout.Snapshot{
		OrderID: "o1",
		Order:   order.Order{PaymentMethod: order.PaymentPix},
		Quote:   checkout.Quote{Total: decimal.RequireFromString("229.43")},
	}
	ok, err := l.Record(ctx, snap, checkout.StatusCompleted)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = l.Record(ctx, &checkout.Snapshot{OrderID: "o2", Reason: "boom"}, checkout.StatusFailed)
	require.NoError(t, err)

	got, err := l.History(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, checkout.StatusCompleted, got[0].Status)
	assert.Equal(t, order.PaymentPix, got[0].PaymentMethod)
	assert.True(t, decimal.RequireFromString("229.43").Equal(got[0].Total))
	assert.Equal(t, fixedNow, got[0].RecordedAt)

	got, err = l.History(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, "boom", got[0].Reason)

	_, err = l.History(ctx, "missing")
	require.ErrorIs(t, err, checkout.ErrTransactionNotFound)

	assert.Len(t, l.Records(), 2)
}
