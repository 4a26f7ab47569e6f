package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
)

// Checkout handles POST /api/checkout. Completed and rejected checkouts both
// answer 200; the status field tells them apart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	o, err := decodeOrder(r.Body)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	res, err := h.checkout.Checkout(ctx, o)
	if err != nil {
		// A FAILED attempt is in the transaction log under its order ID.
		var orderID string
		if res != nil {
			orderID = res.OrderID
		}
		h.writeOrderError(ctx, w, err, orderID)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeResult(e, res)
	})
}

// Quote handles POST /api/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	o, err := decodeOrder(r.Body)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	q, err := h.checkout.Quote(o)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeQuote(e, q)
	})
}

// Transactions handles GET /api/transactions/{orderID}.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.history == nil {
		h.writeError(ctx, w, checkout.ErrTransactionNotFound)
		return
	}

	records, err := h.history.History(ctx, r.PathValue("orderID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeRecords(e, records)
	})
}
