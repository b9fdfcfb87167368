package redis

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/justcoffee/internal/domain/order"
)

// encodeOrder serializes the whole record. The price is written as a decimal
// string so no precision is lost on the way through Redis.
func encodeOrder(o *order.CoffeeOrder) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.FieldStart("id")
		e.Int64(o.ID)
		e.FieldStart("coffeeId")
		e.Int64(o.CoffeeID)
		e.FieldStart("toppingIds")
		e.Arr(func(e *jx.Encoder) {
			for _, id := range o.ToppingIDs {
				e.Int64(id)
			}
		})
		e.FieldStart("description")
		e.Str(o.Description)
		e.FieldStart("price")
		e.Str(o.Price.String())
	})
	return e.Bytes()
}

// decodeOrder parses a record written by encodeOrder. Prices written as JSON
// numbers are accepted too.
func decodeOrder(data []byte) (*order.CoffeeOrder, error) {
	o := &order.CoffeeOrder{ToppingIDs: []int64{}}
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			o.ID, err = d.Int64()
		case "coffeeId":
			o.CoffeeID, err = d.Int64()
		case "toppingIds":
			if d.Next() == jx.Null {
				return d.Null()
			}
			err = d.Arr(func(d *jx.Decoder) error {
				id, err := d.Int64()
				if err != nil {
					return err
				}
				o.ToppingIDs = append(o.ToppingIDs, id)
				return nil
			})
		case "description":
			o.Description, err = d.Str()
		case "price":
			o.Price, err = decodePrice(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return o, nil
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = n.String()
	default:
		return decimal.Zero, errors.Errorf("unexpected %s", d.Next())
	}
	return decimal.NewFromString(raw)
}
