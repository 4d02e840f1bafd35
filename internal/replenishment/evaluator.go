package replenishment

import (
	"fmt"
	"math"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

// Evaluator decides whether and how much to reorder for a single product.
type Evaluator struct {
	z ZScorer
}

// NewEvaluator creates an evaluator; a nil scorer uses DefaultZScore.
func NewEvaluator(z ZScorer) *Evaluator {
	if z == nil {
		z = DefaultZScore
	}
	return &Evaluator{z: z}
}

// Evaluate derives a ReplenishmentDecision from an item snapshot.
//
// The trigger level is the larger of the item's configured reorder point and
// the computed one (daily demand × lead time + safety stock). The recommended
// quantity is never below the deficit to that level and never below the EOQ.
func (e *Evaluator) Evaluate(item domain.StockItem) (domain.ReplenishmentDecision, error) {
	if item.CurrentStock < 0 || item.ReorderPoint < 0 {
		return domain.ReplenishmentDecision{}, fmt.Errorf("product %s: %w: stock levels must not be negative",
			item.ID, domain.ErrInvalidParameter)
	}

	// 1. Daily demand
	dailyDemand := item.AnnualDemand / daysPerYear

	// 2. Economic order quantity
	eoq, err := EOQ(item.AnnualDemand, item.OrderingCost, item.UnitCost, item.HoldingCostRate)
	if err != nil {
		return domain.ReplenishmentDecision{}, fmt.Errorf("product %s: eoq: %w", item.ID, err)
	}

	// 3. Safety stock
	safetyStock, err := SafetyStock(dailyDemand, item.DemandVariability, item.LeadTimeDays, item.ServiceLevel, e.z)
	if err != nil {
		return domain.ReplenishmentDecision{}, fmt.Errorf("product %s: safety stock: %w", item.ID, err)
	}

	// 4. Reorder point
	computed, err := ReorderPoint(dailyDemand, item.LeadTimeDays, safetyStock)
	if err != nil {
		return domain.ReplenishmentDecision{}, fmt.Errorf("product %s: reorder point: %w", item.ID, err)
	}
	effective := computed
	if item.ReorderPoint > effective {
		effective = item.ReorderPoint
	}

	// 5. Order quantity
	deficit := math.Max(0, float64(effective-item.CurrentStock))

	return domain.ReplenishmentDecision{
		ProductID:                item.ID,
		EOQ:                      eoq,
		SafetyStock:              safetyStock,
		ReorderPoint:             effective,
		ComputedReorderPoint:     computed,
		NeedsReorder:             item.CurrentStock <= effective,
		RecommendedOrderQuantity: math.Max(eoq, deficit),
	}, nil
}

// FindReorderCandidates evaluates every item and keeps those that need a
// reorder. Items with malformed data are skipped and returned separately.
func FindReorderCandidates(e *Evaluator, items []domain.StockItem) ([]domain.ReorderCandidate, []SkippedItem) {
	candidates := make([]domain.ReorderCandidate, 0)
	var skipped []SkippedItem

	for _, item := range items {
		decision, err := e.Evaluate(item)
		if err != nil {
			skipped = append(skipped, SkippedItem{ProductID: item.ID, SKU: item.SKU, Err: err})
			continue
		}
		if decision.NeedsReorder {
			candidates = append(candidates, domain.ReorderCandidate{Item: item, Decision: decision})
		}
	}

	return candidates, skipped
}

// SkippedItem records a product left out of a batch because its data is malformed.
type SkippedItem struct {
	ProductID string
	SKU       string
	Err       error
}
