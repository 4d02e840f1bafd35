// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is a product snapshot as read from the catalog.
type StockItem struct {
	ID                string     `json:"id" db:"id"`
	SKU               string     `json:"sku" db:"sku"`
	Name              string     `json:"name" db:"name"`
	Category          string     `json:"category" db:"category"`
	CurrentStock      int        `json:"current_stock" db:"current_stock"`
	ReorderPoint      int        `json:"reorder_point" db:"reorder_point"`
	MaxStock          int        `json:"max_stock" db:"max_stock"`
	UnitCost          float64    `json:"unit_cost" db:"unit_cost"`
	SellingPrice      float64    `json:"selling_price" db:"selling_price"`
	AnnualDemand      float64    `json:"annual_demand" db:"annual_demand"`
	OrderingCost      float64    `json:"ordering_cost" db:"ordering_cost"`
	HoldingCostRate   float64    `json:"holding_cost_rate" db:"holding_cost_rate"`
	LeadTimeDays      float64    `json:"lead_time_days" db:"lead_time_days"`
	DemandVariability float64    `json:"demand_variability" db:"demand_variability"`
	ServiceLevel      float64    `json:"service_level" db:"service_level"`
	TotalSold         int        `json:"total_sold" db:"total_sold"`
	SupplierID        string     `json:"supplier_id" db:"supplier_id"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	LastRestocked     *time.Time `json:"last_restocked,omitempty" db:"last_restocked"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`

	// Supplier is populated when the catalog read joins supplier rows
	Supplier *SupplierProfile `json:"supplier,omitempty" db:"-"`
}

// InventoryValue returns currentStock × unitCost.
func (s StockItem) InventoryValue() float64 {
	return float64(s.CurrentStock) * s.UnitCost
}

// SupplierProfile represents a supplier and its delivery track record
type SupplierProfile struct {
	ID                  string          `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	ContactPerson       string          `json:"contact_person" db:"contact_person"`
	Email               string          `json:"email" db:"email"`
	AverageLeadTimeDays float64         `json:"average_lead_time_days" db:"average_lead_time_days"`
	OnTimeDeliveryRate  float64         `json:"on_time_delivery_rate" db:"on_time_delivery_rate"`
	QualityRating       float64         `json:"quality_rating" db:"quality_rating"`
	TotalOrders         int             `json:"total_orders" db:"total_orders"`
	TotalValue          decimal.Decimal `json:"total_value" db:"total_value"`
	IsActive            bool            `json:"is_active" db:"is_active"`
}

// SupplierPerformance pairs a supplier with its computed 0-100 score
type SupplierPerformance struct {
	SupplierProfile
	Score float64 `json:"performance_score"`
}

// ReplenishmentDecision is derived from a StockItem snapshot on every call and never stored.
type ReplenishmentDecision struct {
	ProductID                string  `json:"product_id"`
	EOQ                      float64 `json:"eoq"`
	SafetyStock              int     `json:"safety_stock"`
	ReorderPoint             int     `json:"reorder_point"`
	ComputedReorderPoint     int     `json:"computed_reorder_point"`
	NeedsReorder             bool    `json:"needs_reorder"`
	RecommendedOrderQuantity float64 `json:"recommended_order_quantity"`
}

// ReorderCandidate is a catalog item that crossed its reorder point.
type ReorderCandidate struct {
	Item     StockItem             `json:"item"`
	Decision ReplenishmentDecision `json:"decision"`
}

type PlanOrigin string

const (
	OriginManual        PlanOrigin = "manual"
	OriginAutoGenerated PlanOrigin = "auto-generated"
)

type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "Pending"
	PlanStatusDelivered PlanStatus = "Delivered"
)

// PlanLine is a single product line of a ReorderPlan
type PlanLine struct {
	ProductID   string          `json:"product_id" db:"product_id"`
	SKU         string          `json:"sku" db:"sku"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    float64         `json:"quantity" db:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	LineTotal   decimal.Decimal `json:"line_total" db:"line_total"`
}

// ReorderPlan is one purchase plan for one supplier
type ReorderPlan struct {
	ID                   string          `json:"id" db:"id"`
	SupplierID           string          `json:"supplier_id" db:"supplier_id"`
	SupplierName         string          `json:"supplier_name" db:"supplier_name"`
	Lines                []PlanLine      `json:"lines" db:"-"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date" db:"expected_delivery_date"`
	Origin               PlanOrigin      `json:"origin" db:"origin"`
	Status               PlanStatus      `json:"status" db:"status"`
	Notes                string          `json:"notes" db:"notes"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	DeliveredAt          *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
}

type ABCBucket string

const (
	BucketA ABCBucket = "A"
	BucketB ABCBucket = "B"
	BucketC ABCBucket = "C"
)

// ABCEntry is one ranked product of an ABC classification
type ABCEntry struct {
	ProductID       string    `json:"product_id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	Value           float64   `json:"value"`
	CumulativeShare float64   `json:"cumulative_share"`
	Bucket          ABCBucket `json:"bucket"`
}

// ABCSummary describes one bucket of an ABC classification
type ABCSummary struct {
	Bucket    ABCBucket `json:"bucket"`
	Count     int       `json:"count"`
	Value     float64   `json:"value"`
	SharePct  float64   `json:"share_pct"`
	TargetPct float64   `json:"target_pct"`
}

// ABCResult is the partition of a catalog into A, B and C
type ABCResult struct {
	A          []ABCEntry   `json:"A"`
	B          []ABCEntry   `json:"B"`
	C          []ABCEntry   `json:"C"`
	Summaries  []ABCSummary `json:"summaries"`
	TotalValue float64      `json:"total_value"`
}

// Len returns the number of classified products.
func (r ABCResult) Len() int {
	return len(r.A) + len(r.B) + len(r.C)
}

type StockoutRisk string

const (
	StockoutRiskLow  StockoutRisk = "Low"
	StockoutRiskHigh StockoutRisk = "High"
)

const (
	ActionReorder    = "Reorder recommended"
	ActionSufficient = "Stock sufficient"
)

// ForecastPoint is the projected demand for one day
type ForecastPoint struct {
	Date            string  `json:"date"`
	ProjectedDemand float64 `json:"projected_demand"`
}

type ForecastSummary struct {
	TotalProjectedDemand float64      `json:"total_projected_demand"`
	StockoutRisk         StockoutRisk `json:"stockout_risk"`
	RecommendedAction    string       `json:"recommended_action"`
}

// ForecastSeries is a bounded-horizon daily demand projection for one product
type ForecastSeries struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CurrentStock int             `json:"current_stock"`
	ReorderPoint int             `json:"reorder_point"`
	Points       []ForecastPoint `json:"forecast"`
	Summary      ForecastSummary `json:"summary"`
}

type StockOperation string

const (
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
	StockDelivery StockOperation = "delivery"
)

// CategoryStats aggregates the catalog per product category
type CategoryStats struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
	LowStock int     `json:"low_stock"`
}

// TurnoverEntry is one row of the inventory turnover ranking
type TurnoverEntry struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Category  string  `json:"category"`
	Turnover  float64 `json:"turnover"`
}

// InventoryOverview is the inventory analytics payload
type InventoryOverview struct {
	Categories          []CategoryStats `json:"category_stats"`
	ABC                 []ABCSummary    `json:"abc_analysis"`
	TopTurnover         []TurnoverEntry `json:"turnover_analysis"`
	TotalInventoryValue float64         `json:"total_inventory_value"`
	LowStockCount       int             `json:"low_stock_count"`
	ProductCount        int             `json:"product_count"`
}
