package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/justcoffee/internal/domain/catalog"
)

const instrumentationName = "github.com/xenking/justcoffee/internal/domain/order"

// Option configures a Service.
type Option func(*Service)

// WithPublisher makes the service announce every store mutation.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithTracerProvider sets the provider used for service spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider sets the provider used for service metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meter = mp.Meter(instrumentationName) }
}

// Service implements the coffee order store: it derives description and
// price for new orders from the catalog and persists records through a
// Repository.
type Service struct {
	coffees  catalog.CoffeeRepository
	toppings catalog.ToppingRepository
	orders   Repository
	ids      IDGenerator
	events   Publisher
	now      func() time.Time

	tracer  trace.Tracer
	meter   metric.Meter
	created metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	coffees catalog.CoffeeRepository,
	toppings catalog.ToppingRepository,
	orders Repository,
	ids IDGenerator,
	opts ...Option,
) *Service {
	s := &Service{
		coffees:  coffees,
		toppings: toppings,
		orders:   orders,
		ids:      ids,
		now:      time.Now,
		tracer:   tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meter:    metricnoop.NewMeterProvider().Meter(instrumentationName),
	}
	for _, o := range opts {
		o(s)
	}

	created, err := s.meter.Int64Counter("orders.created",
		metric.WithDescription("Number of coffee orders created"),
	)
	if err != nil {
		created, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Int64Counter("orders.created")
	}
	s.created = created
	return s
}

// ListAll returns every stored order in no particular order.
func (s *Service) ListAll(ctx context.Context) ([]CoffeeOrder, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if orders == nil {
		orders = []CoffeeOrder{}
	}
	return orders, nil
}

// Create prices and describes a new order, assigns it a fresh id, stores it
// and returns the id. Nothing is stored when any catalog id is unknown.
func (s *Service) Create(ctx context.Context, coffeeID int64, toppingIDs []int64) (_ int64, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Create",
		trace.WithAttributes(
			attribute.Int64("coffee.id", coffeeID),
			attribute.Int("toppings.count", len(toppingIDs)),
		),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	sel, err := s.resolve(ctx, coffeeID, toppingIDs)
	if err != nil {
		return 0, err
	}

	id, err := s.ids.NextID(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "generate order id")
	}
	span.SetAttributes(attribute.Int64("order.id", id))

	o := &CoffeeOrder{
		ID:          id,
		CoffeeID:    coffeeID,
		ToppingIDs:  append([]int64{}, toppingIDs...),
		Description: sel.description(),
		Price:       sel.price(),
	}
	if err := s.orders.Put(ctx, o); err != nil {
		return 0, errors.Wrapf(err, "store order %d", id)
	}

	s.created.Add(ctx, 1)
	s.publish(ctx, EventOrderCreated, id, o)
	return id, nil
}

// GetByID returns the order with the given id. ok is false when no such order
// exists.
func (s *Service) GetByID(ctx context.Context, id int64) (*CoffeeOrder, bool, error) {
	o, ok, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, false, errors.Wrapf(err, "get order %d", id)
	}
	return o, ok, nil
}

// GetManyByID returns the orders for ids, position for position. Missing
// orders are nil in the result.
func (s *Service) GetManyByID(ctx context.Context, ids []int64) ([]*CoffeeOrder, error) {
	if len(ids) == 0 {
		return []*CoffeeOrder{}, nil
	}
	orders, err := s.orders.GetMany(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get orders")
	}
	return orders, nil
}

// Update replaces the stored record for o.ID with o in one write and returns
// the stored record. Description and Price are stored as given.
func (s *Service) Update(ctx context.Context, o CoffeeOrder) (*CoffeeOrder, error) {
	o.ToppingIDs = append([]int64{}, o.ToppingIDs...)
	if err := s.orders.Put(ctx, &o); err != nil {
		return nil, errors.Wrapf(err, "update order %d", o.ID)
	}
	s.publish(ctx, EventOrderUpdated, o.ID, &o)
	return &o, nil
}

// DeleteByID removes the order if it exists.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete order %d", id)
	}
	s.publish(ctx, EventOrderDeleted, id, nil)
	return nil
}

// DeleteAll removes every stored order.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.orders.DeleteAll(ctx); err != nil {
		return errors.Wrap(err, "delete all orders")
	}
	s.publish(ctx, EventOrdersCleared, 0, nil)
	return nil
}

// publish is best effort: the store write already happened, so a delivery
// failure is logged and not returned.
func (s *Service) publish(ctx context.Context, typ EventType, id int64, o *CoffeeOrder) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, Event{
		Type:       typ,
		OrderID:    id,
		Order:      o,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		zctx.From(ctx).Warn("Publish order event",
			zap.String("type", string(typ)),
			zap.Int64("order_id", id),
			zap.Error(err),
		)
	}
}
