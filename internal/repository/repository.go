// internal/repository/repository.go
package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/domain"
)

// CatalogRepository reads stock items and applies stock deltas.
type CatalogRepository interface {
	// ListActiveItems returns active items in catalog order with Supplier joined.
	ListActiveItems(ctx context.Context) ([]domain.StockItem, error)
	GetItem(ctx context.Context, id string) (*domain.StockItem, error)
	// AdjustStock applies a stock change atomically. A subtraction that would
	// drive stock below zero fails with domain.ErrInsufficientStock and
	// leaves the record untouched.
	AdjustStock(ctx context.Context, id string, op domain.StockOperation, quantity int) (*domain.StockItem, error)
}

type SupplierRepository interface {
	ListSuppliers(ctx context.Context) ([]domain.SupplierProfile, error)
	GetSupplier(ctx context.Context, id string) (*domain.SupplierProfile, error)
	// NudgeOnTimeRate applies the post-delivery on-time adjustment atomically.
	NudgeOnTimeRate(ctx context.Context, id string, onTime bool) (*domain.SupplierProfile, error)
}

type PlanRepository interface {
	// SavePlans persists plans and bumps each supplier's order count and
	// value in the same unit of work. Plans must carry an ID.
	SavePlans(ctx context.Context, plans []domain.ReorderPlan) error
	GetPlan(ctx context.Context, id string) (*domain.ReorderPlan, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]domain.ReorderPlan, error)
	// DeliverPlan moves a pending plan to Delivered and adds every line's
	// delivered quantity to stock in one unit of work: either all of it
	// applies or none does. A plan that was already delivered fails with
	// domain.ErrPlanDelivered; a line whose product is gone fails with
	// domain.ErrNotFound.
	DeliverPlan(ctx context.Context, id string, at time.Time) (*domain.ReorderPlan, []Restock, error)
	// PendingProductIDs returns the products that appear on a plan not yet delivered.
	PendingProductIDs(ctx context.Context) (map[string]bool, error)
}

// Store bundles the repositories a service needs.
type Store interface {
	CatalogRepository
	SupplierRepository
	PlanRepository
}

// Restock is one stock increase applied by a delivery.
type Restock struct {
	ProductID    string
	SKU          string
	Quantity     int
	CurrentStock int
}

// DeliveredQuantity rounds a planned line quantity up to whole units.
func DeliveredQuantity(line domain.PlanLine) int {
	return int(math.Ceil(line.Quantity))
}

type PlanFilter struct {
	SupplierID string
	Status     domain.PlanStatus
	Origin     domain.PlanOrigin
	Limit      int
	Offset     int
}

const (
	DefaultPlanLimit = 50
	MaxPlanLimit     = 500
)

// Normalize clamps paging values.
func (f PlanFilter) Normalize() PlanFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPlanLimit
	}
	if f.Limit > MaxPlanLimit {
		f.Limit = MaxPlanLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Matches reports whether plan passes the filter's field predicates.
func (f PlanFilter) Matches(plan domain.ReorderPlan) bool {
	if f.SupplierID != "" && plan.SupplierID != f.SupplierID {
		return false
	}
	if f.Status != "" && plan.Status != f.Status {
		return false
	}
	if f.Origin != "" && plan.Origin != f.Origin {
		return false
	}
	return true
}

// StockDelta returns the signed change for a stock operation.
func StockDelta(op domain.StockOperation, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive (got %d)", domain.ErrInvalidParameter, quantity)
	}

	switch op {
	case domain.StockAdd, domain.StockDelivery:
		return quantity, nil
	case domain.StockSubtract:
		return -quantity, nil
	default:
		return 0, fmt.Errorf("%w: unknown stock operation %q", domain.ErrInvalidParameter, op)
	}
}

// ItemDefaults fill replenishment parameters a stored item leaves unset.
type ItemDefaults struct {
	OrderingCost      float64
	HoldingCostRate   float64
	LeadTimeDays      float64
	DemandVariability float64
	ServiceLevel      float64
}

func ItemDefaultsFrom(cfg config.ReplenishmentConfig) ItemDefaults {
	return ItemDefaults{
		OrderingCost:      cfg.OrderingCost,
		HoldingCostRate:   cfg.HoldingCostRate,
		LeadTimeDays:      cfg.LeadTimeDays,
		DemandVariability: cfg.DemandVariability,
		ServiceLevel:      cfg.ServiceLevel,
	}
}

// Apply fills zero-valued replenishment parameters of item.
func (d ItemDefaults) Apply(item *domain.StockItem) {
	if item.OrderingCost == 0 {
		item.OrderingCost = d.OrderingCost
	}
	if item.HoldingCostRate == 0 {
		item.HoldingCostRate = d.HoldingCostRate
	}
	if item.LeadTimeDays == 0 {
		item.LeadTimeDays = d.LeadTimeDays
	}
	if item.DemandVariability == 0 {
		item.DemandVariability = d.DemandVariability
	}
	if item.ServiceLevel == 0 {
		item.ServiceLevel = d.ServiceLevel
	}
}
