// Package redis keeps the checkout transaction log in Redis lists, one list
// per order.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

const keyPrefix = "kart:txlog"

var (
	_ checkout.TransactionLog    = (*TransactionLog)(nil)
	_ checkout.TransactionReader = (*TransactionLog)(nil)
)

// TransactionLog appends JSON-encoded records to kart:txlog:<orderID>.
type TransactionLog struct {
	client *goredis.Client
	ttl    time.Duration
	now    func() time.Time
}

// New returns a TransactionLog over client. A positive ttl expires the list
// of an order ttl after its last write.
func New(client *goredis.Client, ttl time.Duration) *TransactionLog {
	return &TransactionLog{client: client, ttl: ttl, now: time.Now}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string, ttl time.Duration) (*TransactionLog, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	return New(client, ttl), nil
}

func key(orderID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, orderID)
}

// Close closes the client.
func (l *TransactionLog) Close() error {
	return l.client.Close()
}

// Ping checks the connection.
func (l *TransactionLog) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Record appends a record for snap with the given status.
func (l *TransactionLog) Record(ctx context.Context, snap *checkout.Snapshot, status checkout.Status) (bool, error) {
	rec := checkout.NewTransactionRecord(snap, status, l.now())
	k := key(rec.OrderID)

	_, err := l.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.RPush(ctx, k, encodeRecord(rec))
		if l.ttl > 0 {
			p.Expire(ctx, k, l.ttl)
		}
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "record transaction %q", rec.OrderID)
	}
	return true, nil
}

// History returns the records of orderID, oldest first.
func (l *TransactionLog) History(ctx context.Context, orderID string) ([]checkout.TransactionRecord, error) {
	raw, err := l.client.LRange(ctx, key(orderID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "history of %q", orderID)
	}
	if len(raw) == 0 {
		return nil, checkout.ErrTransactionNotFound
	}

	out := make([]checkout.TransactionRecord, 0, len(raw))
	for _, data := range raw {
		rec, err := decodeRecord([]byte(data))
		if err != nil {
			return nil, errors.Wrapf(err, "decode record of %q", orderID)
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeRecord(rec checkout.TransactionRecord) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("order_id")
	e.Str(rec.OrderID)
	e.FieldStart("status")
	e.Str(string(rec.Status))
	e.FieldStart("payment_method")
	e.Str(string(rec.PaymentMethod))
	// Decimal string keeps the exact value.
	e.FieldStart("total")
	e.Str(rec.Total.String())
	e.FieldStart("invoice_id")
	e.Str(rec.InvoiceID)
	e.FieldStart("reason")
	e.Str(rec.Reason)
	e.FieldStart("recorded_at")
	e.Str(rec.RecordedAt.UTC().Format(time.RFC3339Nano))
	e.ObjEnd()
	return e.Bytes()
}

func decodeRecord(data []byte) (checkout.TransactionRecord, error) {
	var rec checkout.TransactionRecord
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, k string) error {
		v, err := d.Str()
		if err != nil {
			return errors.Wrapf(err, "field %q", k)
		}
		switch k {
		case "order_id":
			rec.OrderID = v
		case "status":
			rec.Status = checkout.Status(v)
		case "payment_method":
			rec.PaymentMethod = order.PaymentMethod(v)
		case "total":
			rec.Total, err = decimal.NewFromString(v)
		case "invoice_id":
			rec.InvoiceID = v
		case "reason":
			rec.Reason = v
		case "recorded_at":
			rec.RecordedAt, err = time.Parse(time.RFC3339Nano, v)
		}
		return err
	})
	return rec, err
}
