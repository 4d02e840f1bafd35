package replenishment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/metrics"
)

type staticCatalog struct {
	items []domain.StockItem
	err   error

	// when set, ListActiveItems signals entered and blocks until release is closed
	entered chan struct{}
	release chan struct{}
}

func (c *staticCatalog) ListActiveItems(ctx context.Context) ([]domain.StockItem, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
		<-c.release
	}
	return c.items, c.err
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.ReorderAlertEvent
	err    error
}

func (s *recordingSink) PublishReorderAlert(ctx context.Context, event domain.ReorderAlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func TestMonitor_CheckEmitsAlert(t *testing.T) {
	acme := &domain.SupplierProfile{ID: "acme", Name: "Acme"}
	catalog := &staticCatalog{items: []domain.StockItem{
		deficitItem("p1", "acme", 2, 10, 1, acme),
		deficitItem("p2", "acme", 50, 10, 1, acme),
	}}
	sink := &recordingSink{}

	candidates, err := NewMonitor(catalog, sink, nil).Check(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Item.ID != "p1" {
		t.Fatalf("Expected p1 as the only candidate, got %+v", candidates)
	}

	if len(sink.events) != 1 {
		t.Fatalf("Expected one alert, got %d", len(sink.events))
	}
	event := sink.events[0]
	if event.Count != 1 || event.EventType != domain.EventTypeReorderAlert || event.EventID == "" {
		t.Errorf("Unexpected alert header: %+v", event)
	}
	item := event.Items[0]
	if item.ID != "p1" || item.SupplierName != "Acme" || item.CurrentStock != 2 || item.ReorderPoint != 10 {
		t.Errorf("Unexpected alert item: %+v", item)
	}
}

func TestMonitor_NoAlertWhenNothingQualifies(t *testing.T) {
	catalog := &staticCatalog{items: []domain.StockItem{deficitItem("p1", "acme", 50, 10, 1, nil)}}
	sink := &recordingSink{}

	candidates, err := NewMonitor(catalog, sink, nil).Check(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
	if len(sink.events) != 0 {
		t.Errorf("Expected no alert, got %d", len(sink.events))
	}
}

func TestMonitor_SinkFailureDoesNotFailCheck(t *testing.T) {
	catalog := &staticCatalog{items: []domain.StockItem{deficitItem("p1", "acme", 0, 10, 1, nil)}}
	sink := &recordingSink{err: errors.New("broker down")}

	candidates, err := NewMonitor(catalog, sink, nil).Check(context.Background())
	if err != nil {
		t.Fatalf("Expected sink failure to be swallowed, got %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected 1 candidate, got %d", len(candidates))
	}
}

func TestMonitor_CatalogError(t *testing.T) {
	catalog := &staticCatalog{err: errors.New("connection refused")}

	if _, err := NewMonitor(catalog, nil, nil).Check(context.Background()); err == nil {
		t.Errorf("Expected catalog error to surface")
	}
}

func TestMonitor_OnTickSkipsOverlap(t *testing.T) {
	catalog := &staticCatalog{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := NewMonitor(catalog, nil, nil)
	skippedBefore := testutil.ToFloat64(metrics.ReorderTicksSkipped)

	type tickResult struct {
		ran bool
		err error
	}
	done := make(chan tickResult, 1)
	go func() {
		ran, err := m.OnTick(context.Background())
		done <- tickResult{ran, err}
	}()

	<-catalog.entered
	if !m.Running() {
		t.Fatalf("Expected the first tick to be running")
	}

	ran, err := m.OnTick(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ran {
		t.Errorf("Expected overlapping tick to be skipped")
	}
	if got := testutil.ToFloat64(metrics.ReorderTicksSkipped) - skippedBefore; got != 1 {
		t.Errorf("Expected skipped-tick counter to grow by 1, got %v", got)
	}

	close(catalog.release)
	first := <-done
	if !first.ran || first.err != nil {
		t.Errorf("Expected first tick to complete, got ran=%v err=%v", first.ran, first.err)
	}
	if m.Running() {
		t.Errorf("Expected guard to be released after the tick")
	}

	// guard released, the next tick runs again; entered must not block now
	catalog.entered = nil
	ran, err = m.OnTick(context.Background())
	if err != nil || !ran {
		t.Errorf("Expected the next tick to run, got ran=%v err=%v", ran, err)
	}
}
