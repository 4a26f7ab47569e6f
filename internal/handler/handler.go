// Package handler exposes the checkout facade over HTTP with JSON bodies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/payment"
	"github.com/xenking/kart-checkout/internal/domain/shipping"
)

// Checkouter is the part of checkout.Facade the handler depends on.
type Checkouter interface {
	Checkout(ctx context.Context, o order.Order) (*checkout.Result, error)
	Quote(o order.Order) (checkout.Quote, error)
}

var _ Checkouter = (*checkout.Facade)(nil)

// Handler serves the checkout API.
type Handler struct {
	checkout Checkouter
	history  checkout.TransactionReader
}

// NewHandler constructs a Handler. history may be nil, in which case the
// transactions endpoint answers 404.
func NewHandler(c Checkouter, history checkout.TransactionReader) *Handler {
	return &Handler{checkout: c, history: history}
}

// Routes returns the API routes, all under /api.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("POST /api/quote", h.Quote)
	mux.HandleFunc("GET /api/transactions/{orderID}", h.Transactions)
	return mux
}

// apiError is written as {"code":..,"message":..}.
type apiError struct {
	Code    int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func badRequest(msg string) *apiError {
	return &apiError{Code: http.StatusBadRequest, Message: msg}
}

// mapError converts domain errors to API errors. Unknown errors are reported
// as 500 without leaking their text.
func mapError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, order.ErrEmptyItems) {
		return badRequest(err.Error())
	}

	var ivErr *order.InvalidValueError
	if errors.As(err, &ivErr) {
		return &apiError{Code: http.StatusUnprocessableEntity, Message: ivErr.Error()}
	}
	if errors.Is(err, order.ErrValueOutOfRange) {
		return &apiError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	}

	switch {
	case errors.Is(err, payment.ErrUnknownMethod),
		errors.Is(err, order.ErrUnknownPaymentMethod):
		return &apiError{Code: http.StatusUnprocessableEntity, Message: "unknown payment method"}
	case errors.Is(err, shipping.ErrUnknownType):
		return &apiError{Code: http.StatusUnprocessableEntity, Message: "unknown shipping type"}
	case errors.Is(err, checkout.ErrTransactionNotFound):
		return &apiError{Code: http.StatusNotFound, Message: err.Error()}
	}

	return &apiError{Code: http.StatusInternalServerError, Message: "internal error"}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	h.writeOrderError(ctx, w, err, "")
}

// writeOrderError is writeError for a checkout attempt that already has an
// order ID, which is added to the body as orderId.
func (h *Handler) writeOrderError(ctx context.Context, w http.ResponseWriter, err error, orderID string) {
	apiErr := mapError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		zctx.From(ctx).Error("Request failed", zap.Error(err), zap.String("order_id", orderID))
	}

	writeJSON(w, apiErr.Code, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(apiErr.Code)
		e.FieldStart("message")
		e.Str(apiErr.Message)
		if orderID != "" {
			e.FieldStart("orderId")
			e.Str(orderID)
		}
		e.ObjEnd()
	})
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
