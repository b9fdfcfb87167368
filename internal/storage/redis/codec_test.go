package redis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeOrder_Layout(t *testing.T) {
	o := latte(42)
	o.Price = decimal.RequireFromString("4.05")

	assert.JSONEq(t,
		`{"id":42,"coffeeId":1,"toppingIds":[10,11],"description":"Latte with Vanilla, Caramel","price":"4.05"}`,
		string(encodeOrder(o)),
	)
}

func TestDecodeOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		toppings []int64
		price    string
		wantErr  bool
	}{
		{
			name:     "string price",
			input:    `{"id":1,"coffeeId":2,"toppingIds":[3],"description":"Mocha with Cream","price":"2.50"}`,
			toppings: []int64{3},
			price:    "2.5",
		},
		{
			name:     "numeric price",
			input:    `{"id":1,"coffeeId":2,"toppingIds":[],"description":"Mocha","price":2.5}`,
			toppings: []int64{},
			price:    "2.5",
		},
		{
			name:     "null toppings",
			input:    `{"id":1,"coffeeId":2,"toppingIds":null,"description":"Mocha","price":"1"}`,
			toppings: []int64{},
			price:    "1",
		},
		{
			name:     "unknown fields skipped",
			input:    `{"id":1,"coffeeId":2,"extra":{"a":[1,2]},"description":"Mocha","price":"1"}`,
			toppings: []int64{},
			price:    "1",
		},
		{name: "bad price", input: `{"id":1,"price":"abc"}`, wantErr: true},
		{name: "price wrong type", input: `{"id":1,"price":true}`, wantErr: true},
		{name: "not an object", input: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := decodeOrder([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), o.ID)
			assert.Equal(t, int64(2), o.CoffeeID)
			assert.Equal(t, tt.toppings, o.ToppingIDs)
			assert.True(t, decimal.RequireFromString(tt.price).Equal(o.Price))
		})
	}
}

func TestCodec_KeepsPricePrecision(t *testing.T) {
	o := latte(1)
	o.Price = decimal.RequireFromString("3.125")

	got, err := decodeOrder(encodeOrder(o))
	require.NoError(t, err)
	assert.Equal(t, "3.125", got.Price.String())
}
