package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/justcoffee/internal/domain/order"
)

// --- Mock implementations ---

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("write without deadline")
	}
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func newTestPublisher(w *mockWriter) *Publisher {
	p := newPublisher(w, time.Second)
	p.newID = func() string { return "evt-1" }
	return p
}

// --- Tests ---

func TestPublish_Created(t *testing.T) {
	w := &mockWriter{}
	p := newTestPublisher(w)
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	err := p.Publish(context.Background(), order.Event{
		Type:    order.EventOrderCreated,
		OrderID: 7,
		Order: &order.CoffeeOrder{
			ID:          7,
			CoffeeID:    1,
			ToppingIDs:  []int64{10, 11},
			Description: "Latte with Vanilla, Caramel",
			Price:       decimal.RequireFromString("4"),
		},
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "7", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "OrderCreated", string(msg.Headers[0].Value))

	assert.JSONEq(t, `{
		"eventId": "evt-1",
		"eventType": "OrderCreated",
		"occurredAt": "2026-03-01T09:30:00Z",
		"producer": "justcoffee",
		"orderId": 7,
		"order": {
			"id": 7,
			"coffeeId": 1,
			"toppingIds": [10, 11],
			"description": "Latte with Vanilla, Caramel",
			"price": "4.00"
		}
	}`, string(msg.Value))
}

func TestPublish_ClearedHasNoOrder(t *testing.T) {
	w := &mockWriter{}
	p := newTestPublisher(w)

	require.NoError(t, p.Publish(context.Background(), order.Event{
		Type:       order.EventOrdersCleared,
		OccurredAt: time.Now(),
	}))
	require.Len(t, w.msgs, 1)

	var env map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	assert.Equal(t, "OrdersCleared", env["eventType"])
	assert.NotContains(t, env, "order")
	assert.NotContains(t, env, "orderId")
}

func TestPublish_WriteError(t *testing.T) {
	w := &mockWriter{err: errors.New("leader not available")}
	p := newTestPublisher(w)

	err := p.Publish(context.Background(), order.Event{Type: order.EventOrderDeleted, OrderID: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write OrderDeleted event")
}

func TestNewPublisher(t *testing.T) {
	_, err := NewPublisher(Config{})
	require.Error(t, err)

	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	kw, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultTopic, kw.Topic)
	require.NoError(t, p.Close())
}

func TestClose(t *testing.T) {
	w := &mockWriter{}
	require.NoError(t, newTestPublisher(w).Close())
	assert.True(t, w.closed)
}
