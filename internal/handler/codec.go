package handler

import (
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// decodeOrder reads a checkout request body:
//
//	{"items":[{"name":"..","value":150.0}],"paymentMethod":"Pix","shippingType":"Normal","giftWrap":false}
func decodeOrder(r io.Reader) (order.Order, error) {
	var o order.Order
	d := jx.Decode(io.LimitReader(r, maxBodySize), 512)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeLineItem(d)
				if err != nil {
					return err
				}
				o.Items = append(o.Items, item)
				return nil
			})
		case "paymentMethod":
			v, err := d.Str()
			o.PaymentMethod = order.PaymentMethod(v)
			return err
		case "shippingType":
			v, err := d.Str()
			o.ShippingType = order.ShippingType(v)
			return err
		case "giftWrap":
			v, err := d.Bool()
			o.GiftWrap = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return order.Order{}, badRequest(errors.Wrap(err, "decode body").Error())
	}
	return o, nil
}

func decodeLineItem(d *jx.Decoder) (order.LineItem, error) {
	var item order.LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			item.Name = v
			return err
		case "value":
			n, err := d.Num()
			if err != nil {
				return err
			}
			v, err := decimal.NewFromString(strings.Trim(n.String(), `"`))
			if err != nil {
				return errors.Wrapf(err, "value of %q", item.Name)
			}
			item.Value = v
			return nil
		default:
			return d.Skip()
		}
	})
	return item, err
}

// encodeMoney writes v as a JSON number with its exact decimal digits.
func encodeMoney(e *jx.Encoder, field string, v decimal.Decimal) {
	e.FieldStart(field)
	e.Num(jx.Num(v.String()))
}

func encodeQuote(e *jx.Encoder, q checkout.Quote) {
	e.ObjStart()
	encodeMoney(e, "base", q.Base)
	e.FieldStart("discountKind")
	e.Str(string(q.DiscountKind))
	encodeMoney(e, "discount", q.Discount)
	encodeMoney(e, "discounted", q.Discounted)
	encodeMoney(e, "shipping", q.Shipping)
	encodeMoney(e, "giftWrap", q.GiftWrap)
	encodeMoney(e, "total", q.Total)
	e.ObjEnd()
}

func encodeResult(e *jx.Encoder, res *checkout.Result) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(res.OrderID)
	e.FieldStart("status")
	e.Str(string(res.Status))
	e.FieldStart("approved")
	e.Bool(res.Status == checkout.StatusCompleted)
	if res.InvoiceID != "" {
		e.FieldStart("invoiceId")
		e.Str(res.InvoiceID)
	}
	if res.Reason != "" {
		e.FieldStart("reason")
		e.Str(res.Reason)
	}
	e.FieldStart("quote")
	encodeQuote(e, res.Quote)
	e.ObjEnd()
}

func encodeRecords(e *jx.Encoder, records []checkout.TransactionRecord) {
	e.ArrStart()
	for _, rec := range records {
		e.ObjStart()
		e.FieldStart("orderId")
		e.Str(rec.OrderID)
		e.FieldStart("status")
		e.Str(string(rec.Status))
		e.FieldStart("paymentMethod")
		e.Str(string(rec.PaymentMethod))
		encodeMoney(e, "total", rec.Total)
		if rec.InvoiceID != "" {
			e.FieldStart("invoiceId")
			e.Str(rec.InvoiceID)
		}
		if rec.Reason != "" {
			e.FieldStart("reason")
			e.Str(rec.Reason)
		}
		e.FieldStart("recordedAt")
		e.Str(rec.RecordedAt.UTC().Format(time.RFC3339Nano))
		e.ObjEnd()
	}
	e.ArrEnd()
}
