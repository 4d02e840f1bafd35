package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/metrics"
)

// Multi publishes every event to all sinks. A failing sink does not stop
// delivery to the others; the failures are joined into the returned error.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) PublishReorderAlert(ctx context.Context, event domain.ReorderAlertEvent) error {
	return m.each(event.EventType, func(s Sink) error { return s.PublishReorderAlert(ctx, event) })
}

func (m *Multi) PublishPlanCreated(ctx context.Context, event domain.PlanCreatedEvent) error {
	return m.each(event.EventType, func(s Sink) error { return s.PublishPlanCreated(ctx, event) })
}

func (m *Multi) PublishStockUpdated(ctx context.Context, event domain.StockUpdatedEvent) error {
	return m.each(event.EventType, func(s Sink) error { return s.PublishStockUpdated(ctx, event) })
}

func (m *Multi) each(eventType string, fn func(Sink) error) error {
	var errs []error
	for _, s := range m.sinks {
		err := fn(s)
		metrics.EventsPublished.WithLabelValues(s.Name(), eventType, metrics.Result(err)).Inc()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

var _ Sink = (*Multi)(nil)
