// Package memory provides an in-process implementation of the repositories,
// used by tests and by the CLI when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/replenishment"
	"github.com/andresuchdata/supplyflow/internal/repository"
)

// itemRecord guards one stock item so concurrent adjustments to different
// products never contend.
type itemRecord struct {
	mu   sync.Mutex
	item domain.StockItem
}

// Store keeps the catalog, suppliers and plans in memory
type Store struct {
	mu        sync.RWMutex
	items     map[string]*itemRecord
	itemOrder []string
	suppliers map[string]*domain.SupplierProfile
	plans     map[string]*domain.ReorderPlan
	planOrder []string

	defaults repository.ItemDefaults
	now      func() time.Time
}

// Verify interface compliance
var _ repository.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore(defaults repository.ItemDefaults) *Store {
	return &Store{
		items:     make(map[string]*itemRecord),
		suppliers: make(map[string]*domain.SupplierProfile),
		plans:     make(map[string]*domain.ReorderPlan),
		defaults:  defaults,
		now:       time.Now,
	}
}

// AddSupplier inserts or replaces a supplier
func (s *Store) AddSupplier(supplier domain.SupplierProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[supplier.ID] = &supplier
}

// AddItem inserts or replaces a stock item, filling unset parameters from the defaults
func (s *Store) AddItem(item domain.StockItem) {
	s.defaults.Apply(&item)
	item.Supplier = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		s.itemOrder = append(s.itemOrder, item.ID)
	}
	s.items[item.ID] = &itemRecord{item: item}
}

func (s *Store) ListActiveItems(ctx context.Context) ([]domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.StockItem, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		item := s.snapshot(s.items[id])
		if item.IsActive {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	item := s.snapshot(rec)
	return &item, nil
}

func (s *Store) AdjustStock(ctx context.Context, id string, op domain.StockOperation, quantity int) (*domain.StockItem, error) {
	delta, err := repository.StockDelta(op, quantity)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}

	rec.mu.Lock()
	if rec.item.CurrentStock+delta < 0 {
		available := rec.item.CurrentStock
		rec.mu.Unlock()
		return nil, fmt.Errorf("product %s: %w: requested %d, available %d", id, domain.ErrInsufficientStock, quantity, available)
	}

	now := s.now()
	rec.item.CurrentStock += delta
	rec.item.UpdatedAt = now
	switch op {
	case domain.StockSubtract:
		rec.item.TotalSold += quantity
	default:
		rec.item.LastRestocked = &now
	}
	rec.mu.Unlock()

	item := s.snapshot(rec)
	return &item, nil
}

// snapshot copies a record and joins its supplier. Callers hold s.mu.
func (s *Store) snapshot(rec *itemRecord) domain.StockItem {
	rec.mu.Lock()
	item := rec.item
	rec.mu.Unlock()

	if sup, ok := s.suppliers[item.SupplierID]; ok {
		copied := *sup
		item.Supplier = &copied
	}
	return item
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.SupplierProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.SupplierProfile, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		if sup.IsActive {
			suppliers = append(suppliers, *sup)
		}
	}
	sort.Slice(suppliers, func(i, j int) bool {
		return suppliers[i].Name < suppliers[j].Name
	})
	return suppliers, nil
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.SupplierProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sup, ok := s.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	copied := *sup
	return &copied, nil
}

func (s *Store) NudgeOnTimeRate(ctx context.Context, id string, onTime bool) (*domain.SupplierProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sup, ok := s.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	sup.OnTimeDeliveryRate = replenishment.NudgeOnTimeRate(sup.OnTimeDeliveryRate, onTime)
	copied := *sup
	return &copied, nil
}

func (s *Store) SavePlans(ctx context.Context, plans []domain.ReorderPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// validate everything first so a bad plan leaves the store untouched
	for _, plan := range plans {
		if plan.ID == "" {
			return fmt.Errorf("%w: plan without id", domain.ErrInvalidParameter)
		}
		if _, exists := s.plans[plan.ID]; exists {
			return fmt.Errorf("%w: duplicate plan id %s", domain.ErrInvalidParameter, plan.ID)
		}
		if _, ok := s.suppliers[plan.SupplierID]; !ok {
			return fmt.Errorf("supplier %s: %w", plan.SupplierID, domain.ErrNotFound)
		}
	}

	for _, plan := range plans {
		stored := clonePlan(plan)
		s.plans[plan.ID] = &stored
		s.planOrder = append(s.planOrder, plan.ID)

		sup := s.suppliers[plan.SupplierID]
		sup.TotalOrders++
		sup.TotalValue = sup.TotalValue.Add(plan.TotalAmount)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (*domain.ReorderPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	copied := clonePlan(*plan)
	return &copied, nil
}

// ListPlans returns matching plans, newest first.
func (s *Store) ListPlans(ctx context.Context, filter repository.PlanFilter) ([]domain.ReorderPlan, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]domain.ReorderPlan, 0)
	skipped := 0
	for i := len(s.planOrder) - 1; i >= 0; i-- {
		plan := s.plans[s.planOrder[i]]
		if !filter.Matches(*plan) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		plans = append(plans, clonePlan(*plan))
		if len(plans) == filter.Limit {
			break
		}
	}
	return plans, nil
}

// DeliverPlan holds the store lock for the whole delivery so stock
// adjustments and the status change land together.
func (s *Store) DeliverPlan(ctx context.Context, id string, at time.Time) (*domain.ReorderPlan, []repository.Restock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	if plan.Status == domain.PlanStatusDelivered {
		return nil, nil, fmt.Errorf("plan %s: %w", id, domain.ErrPlanDelivered)
	}

	// validate every line before touching stock
	for _, line := range plan.Lines {
		if _, ok := s.items[line.ProductID]; !ok {
			return nil, nil, fmt.Errorf("plan %s: product %s: %w", id, line.ProductID, domain.ErrNotFound)
		}
	}

	now := s.now()
	restocks := make([]repository.Restock, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		quantity := repository.DeliveredQuantity(line)
		if quantity <= 0 {
			continue
		}
		rec := s.items[line.ProductID]
		rec.mu.Lock()
		rec.item.CurrentStock += quantity
		rec.item.UpdatedAt = now
		restockedAt := at
		rec.item.LastRestocked = &restockedAt
		restocks = append(restocks, repository.Restock{
			ProductID:    rec.item.ID,
			SKU:          rec.item.SKU,
			Quantity:     quantity,
			CurrentStock: rec.item.CurrentStock,
		})
		rec.mu.Unlock()
	}

	plan.Status = domain.PlanStatusDelivered
	plan.DeliveredAt = &at
	copied := clonePlan(*plan)
	return &copied, restocks, nil
}

func (s *Store) PendingProductIDs(ctx context.Context) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make(map[string]bool)
	for _, plan := range s.plans {
		if plan.Status != domain.PlanStatusPending {
			continue
		}
		for _, line := range plan.Lines {
			pending[line.ProductID] = true
		}
	}
	return pending, nil
}

func clonePlan(plan domain.ReorderPlan) domain.ReorderPlan {
	plan.Lines = append([]domain.PlanLine(nil), plan.Lines...)
	if plan.DeliveredAt != nil {
		at := *plan.DeliveredAt
		plan.DeliveredAt = &at
	}
	return plan
}
