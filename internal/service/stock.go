package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/metrics"
)

// AdjustStock adds or subtracts stock for a product. Subtracting more than
// is on hand fails with domain.ErrInsufficientStock and changes nothing.
func (s *ReplenishmentService) AdjustStock(ctx context.Context, productID string, op domain.StockOperation, quantity int) (*domain.StockItem, error) {
	item, err := s.store.AdjustStock(ctx, productID, op, quantity)
	metrics.StockAdjustments.WithLabelValues(string(op), metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx)

	delta := quantity
	if op == domain.StockSubtract {
		delta = -quantity
	}
	s.publishStockUpdate(ctx, item.ID, item.SKU, op, delta, item.CurrentStock)

	return item, nil
}

func (s *ReplenishmentService) publishStockUpdate(ctx context.Context, productID, sku string, op domain.StockOperation, delta, current int) {
	event := domain.StockUpdatedEvent{
		EventID:      uuid.NewString(),
		EventType:    domain.EventTypeStockUpdated,
		ProductID:    productID,
		SKU:          sku,
		Operation:    op,
		Delta:        delta,
		CurrentStock: current,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.sink.PublishStockUpdated(ctx, event); err != nil {
		log.Error().Err(err).Str("product_id", productID).Msg("Failed to publish stock update")
	}
}
