// Package notify delivers domain events to the configured transports.
package notify

import (
	"context"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

// Sink receives domain events. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	PublishReorderAlert(ctx context.Context, event domain.ReorderAlertEvent) error
	PublishPlanCreated(ctx context.Context, event domain.PlanCreatedEvent) error
	PublishStockUpdated(ctx context.Context, event domain.StockUpdatedEvent) error
	Close() error
}
