package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/repository"
	"github.com/andresuchdata/supplyflow/internal/repository/memory"
	"github.com/andresuchdata/supplyflow/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := config.ReplenishmentConfig{
		OrderingCost:          50,
		HoldingCostRate:       0.2,
		LeadTimeDays:          7,
		DemandVariability:     0.1,
		ServiceLevel:          0.95,
		ServiceLevelThreshold: 0.95,
		ForecastDays:          30,
	}

	store := memory.NewStore(repository.ItemDefaultsFrom(cfg))
	store.AddSupplier(domain.SupplierProfile{ID: "acme", Name: "Acme", AverageLeadTimeDays: 7, OnTimeDeliveryRate: 0.9, QualityRating: 4, IsActive: true})
	store.AddSupplier(domain.SupplierProfile{ID: "globex", Name: "Globex", AverageLeadTimeDays: 2, OnTimeDeliveryRate: 0.95, QualityRating: 5, IsActive: true})
	store.AddItem(domain.StockItem{ID: "p1", SKU: "SKU-1", Name: "Widget", Category: "Hardware", CurrentStock: 5, ReorderPoint: 20, UnitCost: 2.5, AnnualDemand: 365, SupplierID: "acme", IsActive: true})
	store.AddItem(domain.StockItem{ID: "p2", SKU: "SKU-2", Name: "Cable", Category: "Electrical", CurrentStock: 2, ReorderPoint: 10, UnitCost: 4, SupplierID: "globex", IsActive: true})
	store.AddItem(domain.StockItem{ID: "p3", SKU: "SKU-3", Name: "Lamp", Category: "Electrical", CurrentStock: 50, ReorderPoint: 10, UnitCost: 30, SupplierID: "globex", IsActive: true})

	svc := service.NewReplenishmentService(store, cfg, nil, nil, nil)
	return NewRouter(&Services{Replenishment: svc}, []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	if rec := doRequest(t, router, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestRouter_ProductDecision(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/p1/decision", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var candidate domain.ReorderCandidate
	decode(t, rec, &candidate)
	if !candidate.Decision.NeedsReorder || candidate.Decision.ReorderPoint != 20 {
		t.Errorf("Unexpected decision: %+v", candidate.Decision)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/products/missing/decision", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown product, got %d", rec.Code)
	}
}

func TestRouter_UpdateStock(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"subtract", `{"quantity": 10, "operation": "subtract"}`, http.StatusOK},
		{"insufficient", `{"quantity": 1000, "operation": "subtract"}`, http.StatusConflict},
		{"unknown operation", `{"quantity": 1, "operation": "multiply"}`, http.StatusBadRequest},
		{"zero quantity", `{"quantity": 0, "operation": "add"}`, http.StatusBadRequest},
		{"malformed body", `{"quantity": "ten"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPatch, "/api/v1/products/p3/stock", tt.body)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/p3/decision", "")
	var candidate domain.ReorderCandidate
	decode(t, rec, &candidate)
	if candidate.Item.CurrentStock != 40 {
		t.Errorf("Expected only the successful subtract to apply, stock is %d", candidate.Item.CurrentStock)
	}
}

func TestRouter_ReorderAlerts(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/alerts/reorder", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 2 {
		t.Errorf("Expected 2 products below reorder point, got %d", body.Count)
	}
}

func TestRouter_OrderLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/orders/auto-reorder", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Count  int                  `json:"count"`
		Orders []domain.ReorderPlan `json:"orders"`
	}
	decode(t, rec, &created)
	if created.Count != 2 || created.Orders[0].Origin != domain.OriginAutoGenerated {
		t.Fatalf("Unexpected auto-reorder response: %+v", created)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/orders/auto-reorder", `{"origin": "manual"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with nothing left to plan, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/orders?supplier_id=acme", "")
	var listed struct {
		Count int `json:"count"`
	}
	decode(t, rec, &listed)
	if listed.Count != 1 {
		t.Errorf("Expected 1 acme order, got %d", listed.Count)
	}

	id := created.Orders[0].ID
	rec = doRequest(t, router, http.MethodGet, "/api/v1/orders/"+id, "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 fetching order, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/orders/"+id+"/receive", `{"delivered_at": "2030-01-01T00:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 receiving order, got %d: %s", rec.Code, rec.Body.String())
	}
	var received domain.ReorderPlan
	decode(t, rec, &received)
	if received.Status != domain.PlanStatusDelivered {
		t.Errorf("Expected Delivered, got %s", received.Status)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/orders/"+id+"/receive", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 receiving twice, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/orders/nope/receive", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown order, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/orders/auto-reorder", `{"origin": "robot"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown origin, got %d", rec.Code)
	}
}

func TestRouter_Analytics(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/abc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var abc domain.ABCResult
	decode(t, rec, &abc)
	// 12.5 + 8 + 1500
	if abc.Len() != 3 || abc.TotalValue != 1520.5 {
		t.Errorf("Expected 3 classified products worth 1520.5, got %d worth %v", abc.Len(), abc.TotalValue)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/analytics/inventory?top=1", "")
	var overview domain.InventoryOverview
	decode(t, rec, &overview)
	if overview.ProductCount != 3 || len(overview.TopTurnover) != 1 {
		t.Errorf("Unexpected overview: %+v", overview)
	}

	first := doRequest(t, router, http.MethodGet, "/api/v1/analytics/forecast?product_id=p1&days=5&seed=7", "")
	second := doRequest(t, router, http.MethodGet, "/api/v1/analytics/forecast?product_id=p1&days=5&seed=7", "")
	var a, b domain.ForecastSeries
	decode(t, first, &a)
	decode(t, second, &b)
	if len(a.Points) != 5 || !reflect.DeepEqual(a, b) {
		t.Errorf("Expected identical 5-day seeded forecasts, got %+v and %+v", a.Points, b.Points)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/analytics/forecast?days=3", "")
	var all struct {
		Count int `json:"count"`
	}
	decode(t, rec, &all)
	if all.Count != 3 {
		t.Errorf("Expected a forecast per product, got %d", all.Count)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/analytics/forecast?product_id=missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 forecasting an unknown product, got %d", rec.Code)
	}
}

func TestRouter_SupplierPerformance(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/suppliers/performance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var suppliers []domain.SupplierPerformance
	decode(t, rec, &suppliers)
	if len(suppliers) != 2 || suppliers[0].ID != "globex" {
		t.Errorf("Expected globex first, got %+v", suppliers)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " ", "*"})
	if !allowAll {
		t.Error("Expected * to allow all origins")
	}
	if !reflect.DeepEqual(origins, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("Unexpected origins: %v", origins)
	}
}
