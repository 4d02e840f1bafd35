package replenishment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/metrics"
)

// CatalogReader returns the active catalog with suppliers joined.
type CatalogReader interface {
	ListActiveItems(ctx context.Context) ([]domain.StockItem, error)
}

// AlertSink receives reorder alerts.
type AlertSink interface {
	PublishReorderAlert(ctx context.Context, event domain.ReorderAlertEvent) error
}

// Monitor runs reorder checks over the active catalog. It only detects and
// alerts; creating plans is left to the Planner.
type Monitor struct {
	catalog   CatalogReader
	sink      AlertSink
	evaluator *Evaluator
	now       func() time.Time

	running *atomic.Bool
}

// NewMonitor creates a monitor. sink may be nil, in which case alerts are only logged.
func NewMonitor(catalog CatalogReader, sink AlertSink, evaluator *Evaluator) *Monitor {
	if evaluator == nil {
		evaluator = NewEvaluator(nil)
	}
	return &Monitor{
		catalog:   catalog,
		sink:      sink,
		evaluator: evaluator,
		now:       time.Now,
		running:   atomic.NewBool(false),
	}
}

// Check runs an on-demand reorder check and returns the eligible products.
func (m *Monitor) Check(ctx context.Context) ([]domain.ReorderCandidate, error) {
	return m.check(ctx, "manual")
}

// OnTick runs a periodic check unless the previous one is still in flight,
// in which case the tick is dropped and false is returned.
func (m *Monitor) OnTick(ctx context.Context) (bool, error) {
	if !m.running.CAS(false, true) {
		metrics.ReorderTicksSkipped.Inc()
		log.Warn().Msg("Reorder check still running, skipping tick")
		return false, nil
	}
	defer m.running.Store(false)

	_, err := m.check(ctx, "tick")
	return true, err
}

// Running reports whether a periodic check is in flight.
func (m *Monitor) Running() bool {
	return m.running.Load()
}

func (m *Monitor) check(ctx context.Context, trigger string) ([]domain.ReorderCandidate, error) {
	start := time.Now()

	items, err := m.catalog.ListActiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	candidates, skipped := FindReorderCandidates(m.evaluator, items)
	logSkipped("reorder_check", skipped)

	metrics.ReorderChecks.WithLabelValues(trigger).Inc()
	metrics.ReorderCandidates.Set(float64(len(candidates)))

	if len(candidates) == 0 {
		log.Info().
			Str("trigger", trigger).
			Int("products", len(items)).
			Msg("No products need reordering")
		return candidates, nil
	}

	event := NewReorderAlert(candidates, m.now())
	log.Info().
		Str("trigger", trigger).
		Int("products", len(items)).
		Int("reorder_count", event.Count).
		Dur("duration", time.Since(start)).
		Msg("Products need reordering")

	if m.sink != nil {
		// sink errors never fail the check
		if err := m.sink.PublishReorderAlert(ctx, event); err != nil {
			log.Error().Err(err).Str("event_id", event.EventID).Msg("Failed to publish reorder alert")
		}
	}

	return candidates, nil
}

// NewReorderAlert builds the alert event for a set of reorder candidates.
func NewReorderAlert(candidates []domain.ReorderCandidate, now time.Time) domain.ReorderAlertEvent {
	items := make([]domain.ReorderAlertItem, 0, len(candidates))
	for _, c := range candidates {
		var supplierName string
		if c.Item.Supplier != nil {
			supplierName = c.Item.Supplier.Name
		}
		items = append(items, domain.ReorderAlertItem{
			ID:                c.Item.ID,
			Name:              c.Item.Name,
			SKU:               c.Item.SKU,
			CurrentStock:      c.Item.CurrentStock,
			ReorderPoint:      c.Decision.ReorderPoint,
			SupplierName:      supplierName,
			SuggestedQuantity: c.Decision.RecommendedOrderQuantity,
		})
	}

	return domain.ReorderAlertEvent{
		EventID:   uuid.NewString(),
		EventType: domain.EventTypeReorderAlert,
		Count:     len(items),
		Items:     items,
		Timestamp: now.UTC(),
	}
}
