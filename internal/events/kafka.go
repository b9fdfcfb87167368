// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/xenking/justcoffee/internal/domain/order"
)

// DefaultTopic receives all order events.
const DefaultTopic = "coffee-orders"

const producerName = "justcoffee"

var _ order.Publisher = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the message value written for every event.
type Envelope struct {
	EventID    string          `json:"eventId"`
	EventType  order.EventType `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Producer   string          `json:"producer"`
	OrderID    int64           `json:"orderId,omitempty"`
	Order      *OrderPayload   `json:"order,omitempty"`
}

// OrderPayload is the order snapshot carried by created and updated events.
type OrderPayload struct {
	ID          int64   `json:"id"`
	CoffeeID    int64   `json:"coffeeId"`
	ToppingIDs  []int64 `json:"toppingIds"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
}

// Config configures the Kafka publisher.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher writes order events synchronously, keyed by order id so events of
// one order stay on one partition.
type Publisher struct {
	w       messageWriter
	timeout time.Duration
	newID   func() string
}

// NewPublisher creates a Kafka publisher for the configured brokers.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, cfg.WriteTimeout), nil
}

func newPublisher(w messageWriter, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{
		w:       w,
		timeout: timeout,
		newID:   func() string { return uuid.New().String() },
	}
}

// Publish implements order.Publisher.
func (p *Publisher) Publish(ctx context.Context, e order.Event) error {
	value, err := json.Marshal(p.envelope(e))
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.OrderID, 10)),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "write %s event", e.Type)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

func (p *Publisher) envelope(e order.Event) Envelope {
	env := Envelope{
		EventID:    p.newID(),
		EventType:  e.Type,
		OccurredAt: e.OccurredAt,
		Producer:   producerName,
		OrderID:    e.OrderID,
	}
	if o := e.Order; o != nil {
		env.Order = &OrderPayload{
			ID:          o.ID,
			CoffeeID:    o.CoffeeID,
			ToppingIDs:  o.ToppingIDs,
			Description: o.Description,
			Price:       o.Price.StringFixed(2),
		}
	}
	return env
}
