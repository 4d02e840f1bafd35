package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/repository"
)

var testDefaults = repository.ItemDefaults{
	OrderingCost:      50,
	HoldingCostRate:   0.2,
	LeadTimeDays:      7,
	DemandVariability: 0.1,
	ServiceLevel:      0.95,
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s := NewStore(testDefaults)
	s.AddSupplier(domain.SupplierProfile{ID: "acme", Name: "Acme", AverageLeadTimeDays: 7, OnTimeDeliveryRate: 0.9, IsActive: true})
	s.AddItem(domain.StockItem{ID: "p1", SKU: "SKU-1", Name: "Widget", CurrentStock: 10, UnitCost: 5, SupplierID: "acme", IsActive: true})
	s.AddItem(domain.StockItem{ID: "p2", SKU: "SKU-2", Name: "Gadget", CurrentStock: 3, UnitCost: 8, SupplierID: "acme", IsActive: false})
	return s
}

func TestStore_ListActiveItems(t *testing.T) {
	s := newTestStore(t)

	items, err := s.ListActiveItems(context.Background())
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Fatalf("Expected only the active item p1, got %+v", items)
	}

	item := items[0]
	if item.Supplier == nil || item.Supplier.Name != "Acme" {
		t.Errorf("Expected supplier to be joined, got %+v", item.Supplier)
	}
	if item.OrderingCost != 50 || item.HoldingCostRate != 0.2 || item.LeadTimeDays != 7 || item.ServiceLevel != 0.95 {
		t.Errorf("Expected defaults to be applied, got %+v", item)
	}
}

func TestStore_AdjustStock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item, err := s.AdjustStock(ctx, "p1", domain.StockSubtract, 4)
	if err != nil {
		t.Fatalf("Failed to subtract stock: %v", err)
	}
	if item.CurrentStock != 6 || item.TotalSold != 4 {
		t.Errorf("Expected stock 6 and total sold 4, got %d/%d", item.CurrentStock, item.TotalSold)
	}

	item, err = s.AdjustStock(ctx, "p1", domain.StockDelivery, 20)
	if err != nil {
		t.Fatalf("Failed to receive stock: %v", err)
	}
	if item.CurrentStock != 26 || item.LastRestocked == nil {
		t.Errorf("Expected stock 26 with a restock time, got %d/%v", item.CurrentStock, item.LastRestocked)
	}
}

func TestStore_AdjustStock_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AdjustStock(ctx, "p1", domain.StockSubtract, 11)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	item, err := s.GetItem(ctx, "p1")
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if item.CurrentStock != 10 || item.TotalSold != 0 {
		t.Errorf("Expected stock left at 10, got %d (sold %d)", item.CurrentStock, item.TotalSold)
	}
}

func TestStore_AdjustStock_Invalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.AdjustStock(ctx, "p1", domain.StockAdd, 0); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for zero quantity, got %v", err)
	}
	if _, err := s.AdjustStock(ctx, "p1", "steal", 1); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for unknown operation, got %v", err)
	}
	if _, err := s.AdjustStock(ctx, "missing", domain.StockAdd, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_AdjustStock_ConcurrentDecrements(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AdjustStock(ctx, "p1", domain.StockSubtract, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Errorf("Expected exactly 10 successful decrements, got %d", succeeded)
	}
	item, _ := s.GetItem(ctx, "p1")
	if item.CurrentStock != 0 {
		t.Errorf("Expected stock 0, got %d", item.CurrentStock)
	}
}

func TestStore_Plans(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	plan := domain.ReorderPlan{
		ID:           "plan-1",
		SupplierID:   "acme",
		SupplierName: "Acme",
		Lines: []domain.PlanLine{
			{ProductID: "p1", Quantity: 5, UnitCost: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(25)},
		},
		TotalAmount: decimal.NewFromInt(25),
		Origin:      domain.OriginAutoGenerated,
		Status:      domain.PlanStatusPending,
	}
	if err := s.SavePlans(ctx, []domain.ReorderPlan{plan}); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}

	sup, _ := s.GetSupplier(ctx, "acme")
	if sup.TotalOrders != 1 || !sup.TotalValue.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected supplier stats 1/25, got %d/%s", sup.TotalOrders, sup.TotalValue)
	}

	if err := s.SavePlans(ctx, []domain.ReorderPlan{plan}); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("Expected duplicate plan id to be rejected, got %v", err)
	}

	plans, err := s.ListPlans(ctx, repository.PlanFilter{SupplierID: "acme"})
	if err != nil || len(plans) != 1 {
		t.Fatalf("Expected 1 plan for acme, got %d (err %v)", len(plans), err)
	}
	plans, _ = s.ListPlans(ctx, repository.PlanFilter{Status: domain.PlanStatusDelivered})
	if len(plans) != 0 {
		t.Errorf("Expected no delivered plans, got %d", len(plans))
	}

	pending, err := s.PendingProductIDs(ctx)
	if err != nil || !pending["p1"] {
		t.Errorf("Expected p1 to be pending, got %v (err %v)", pending, err)
	}

	at := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	delivered, restocks, err := s.DeliverPlan(ctx, "plan-1", at)
	if err != nil {
		t.Fatalf("Failed to deliver plan: %v", err)
	}
	if delivered.Status != domain.PlanStatusDelivered || !delivered.DeliveredAt.Equal(at) {
		t.Errorf("Unexpected delivered plan: %+v", delivered)
	}
	if len(restocks) != 1 || restocks[0].Quantity != 5 || restocks[0].CurrentStock != 15 {
		t.Errorf("Unexpected restocks: %+v", restocks)
	}
	if item, _ := s.GetItem(ctx, "p1"); item.CurrentStock != 15 || !item.LastRestocked.Equal(at) {
		t.Errorf("Expected p1 restocked to 15 at delivery time, got %+v", item)
	}
	if pending, _ := s.PendingProductIDs(ctx); pending["p1"] {
		t.Errorf("Expected p1 to leave the pending set after delivery")
	}
	if _, _, err := s.DeliverPlan(ctx, "plan-1", at); !errors.Is(err, domain.ErrPlanDelivered) {
		t.Errorf("Expected ErrPlanDelivered, got %v", err)
	}
	if _, err := s.GetPlan(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeliverPlan_MissingProduct(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	plan := domain.ReorderPlan{
		ID:         "plan-1",
		SupplierID: "acme",
		Lines: []domain.PlanLine{
			{ProductID: "p1", Quantity: 10},
			{ProductID: "gone", Quantity: 5},
		},
		Status: domain.PlanStatusPending,
	}
	if err := s.SavePlans(ctx, []domain.ReorderPlan{plan}); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}

	if _, _, err := s.DeliverPlan(ctx, "plan-1", time.Now()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if item, _ := s.GetItem(ctx, "p1"); item.CurrentStock != 10 {
		t.Errorf("Expected p1 untouched at 10, got %d", item.CurrentStock)
	}
	if stored, _ := s.GetPlan(ctx, "plan-1"); stored.Status != domain.PlanStatusPending {
		t.Errorf("Expected plan to stay Pending, got %s", stored.Status)
	}
}

func TestStore_NudgeOnTimeRate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sup, err := s.NudgeOnTimeRate(ctx, "acme", false)
	if err != nil {
		t.Fatalf("Failed to nudge: %v", err)
	}
	if sup.OnTimeDeliveryRate < 0.879 || sup.OnTimeDeliveryRate > 0.881 {
		t.Errorf("Expected rate 0.88, got %v", sup.OnTimeDeliveryRate)
	}
}
