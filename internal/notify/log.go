package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

// LogSink writes events to the application log. It is always part of the
// fan-out so alerts stay visible when no transport is configured.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) PublishReorderAlert(ctx context.Context, event domain.ReorderAlertEvent) error {
	skus := make([]string, 0, len(event.Items))
	for _, item := range event.Items {
		skus = append(skus, item.SKU)
	}

	log.Warn().
		Str("event_id", event.EventID).
		Int("count", event.Count).
		Strs("skus", skus).
		Msg("Reorder alert")
	return nil
}

func (LogSink) PublishPlanCreated(ctx context.Context, event domain.PlanCreatedEvent) error {
	log.Info().
		Str("event_id", event.EventID).
		Str("plan_id", event.Plan.ID).
		Str("supplier_id", event.Plan.SupplierID).
		Int("lines", len(event.Plan.Lines)).
		Str("total_amount", event.Plan.TotalAmount.StringFixed(2)).
		Str("origin", string(event.Plan.Origin)).
		Msg("Reorder plan created")
	return nil
}

func (LogSink) PublishStockUpdated(ctx context.Context, event domain.StockUpdatedEvent) error {
	log.Info().
		Str("event_id", event.EventID).
		Str("product_id", event.ProductID).
		Str("operation", string(event.Operation)).
		Int("delta", event.Delta).
		Int("current_stock", event.CurrentStock).
		Msg("Stock updated")
	return nil
}

func (LogSink) Close() error { return nil }

var _ Sink = LogSink{}
