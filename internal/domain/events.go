package domain

import "time"

// Event types
const (
	EventTypeReorderAlert = "reorder.alert"
	EventTypePlanCreated  = "plan.created"
	EventTypeStockUpdated = "stock.updated"
)

// ReorderAlertItem is one product line of a reorder alert
type ReorderAlertItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SKU               string  `json:"sku"`
	CurrentStock      int     `json:"current_stock"`
	ReorderPoint      int     `json:"reorder_point"`
	SupplierName      string  `json:"supplier_name"`
	SuggestedQuantity float64 `json:"suggested_quantity"`
}

// ReorderAlertEvent is emitted by a reorder check that found eligible products
type ReorderAlertEvent struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Count     int                `json:"count"`
	Items     []ReorderAlertItem `json:"items"`
	Timestamp time.Time          `json:"timestamp"`
}

// PlanCreatedEvent is emitted once per persisted reorder plan
type PlanCreatedEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Plan      ReorderPlan `json:"plan"`
	Timestamp time.Time   `json:"timestamp"`
}

// StockUpdatedEvent is emitted after a stock quantity change
type StockUpdatedEvent struct {
	EventID      string         `json:"event_id"`
	EventType    string         `json:"event_type"`
	ProductID    string         `json:"product_id"`
	SKU          string         `json:"sku"`
	Operation    StockOperation `json:"operation"`
	Delta        int            `json:"delta"`
	CurrentStock int            `json:"current_stock"`
	Timestamp    time.Time      `json:"timestamp"`
}
