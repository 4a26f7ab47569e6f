// Package memory provides in-process checkout collaborators.
package memory

import (
	"context"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

var _ checkout.Inventory = (*Inventory)(nil)

// Inventory is a stock stub that accepts every deduction and counts how
// many times each item name left the stock.
type Inventory struct {
	mu       sync.Mutex
	deducted map[string]int
}

// NewInventory returns an empty Inventory.
func NewInventory() *Inventory {
	return &Inventory{deducted: make(map[string]int)}
}

// DeductStock registers every item as shipped out.
func (inv *Inventory) DeductStock(ctx context.Context, items []order.LineItem) (bool, error) {
	lg := zctx.From(ctx)

	inv.mu.Lock()
	defer inv.mu.Unlock()

	for _, item := range items {
		inv.deducted[item.Name]++
		lg.Info("Stock deducted", zap.String("item", item.Name))
	}
	return true, nil
}

// Deducted returns how many units of name were deducted so far.
func (inv *Inventory) Deducted(name string) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.deducted[name]
}
