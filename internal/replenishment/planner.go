package replenishment

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/metrics"
)

const autoReorderNotes = "Auto-generated reorder based on reorder points"

// Planner turns reorder-eligible catalog items into one ReorderPlan per supplier.
type Planner struct {
	evaluator *Evaluator
}

func NewPlanner(evaluator *Evaluator) *Planner {
	if evaluator == nil {
		evaluator = NewEvaluator(nil)
	}
	return &Planner{evaluator: evaluator}
}

// Plan evaluates items, keeps those needing a reorder and groups them by
// supplier. Plans are returned in the order their supplier first appears in
// the catalog and lines keep catalog order. Plan IDs are left empty for the
// persistence layer to assign.
//
// An eligible item without a joined supplier fails the whole pass with
// ErrNotFound. Items with malformed numeric data are logged and skipped.
func (p *Planner) Plan(items []domain.StockItem, origin domain.PlanOrigin, now time.Time) ([]domain.ReorderPlan, error) {
	candidates, skipped := FindReorderCandidates(p.evaluator, items)
	logSkipped("plan", skipped)

	plans := make([]domain.ReorderPlan, 0)
	index := make(map[string]int)

	for _, c := range candidates {
		supplier := c.Item.Supplier
		if supplier == nil {
			return nil, fmt.Errorf("product %s: supplier %q: %w", c.Item.ID, c.Item.SupplierID, domain.ErrNotFound)
		}

		i, ok := index[c.Item.SupplierID]
		if !ok {
			plan := domain.ReorderPlan{
				SupplierID:           c.Item.SupplierID,
				SupplierName:         supplier.Name,
				Lines:                make([]domain.PlanLine, 0, 1),
				TotalAmount:          decimal.Zero,
				ExpectedDeliveryDate: now.Add(leadTimeDuration(supplier.AverageLeadTimeDays)),
				Origin:               origin,
				Status:               domain.PlanStatusPending,
				CreatedAt:            now,
			}
			if origin == domain.OriginAutoGenerated {
				plan.Notes = autoReorderNotes
			}
			plans = append(plans, plan)
			i = len(plans) - 1
			index[c.Item.SupplierID] = i
		}

		unitCost := decimal.NewFromFloat(c.Item.UnitCost)
		lineTotal := decimal.NewFromFloat(c.Decision.RecommendedOrderQuantity).Mul(unitCost)

		plans[i].Lines = append(plans[i].Lines, domain.PlanLine{
			ProductID:   c.Item.ID,
			SKU:         c.Item.SKU,
			ProductName: c.Item.Name,
			Quantity:    c.Decision.RecommendedOrderQuantity,
			UnitCost:    unitCost,
			LineTotal:   lineTotal,
		})
		plans[i].TotalAmount = plans[i].TotalAmount.Add(lineTotal)
	}

	return plans, nil
}

func leadTimeDuration(days float64) time.Duration {
	if days <= 0 {
		return 0
	}
	return time.Duration(days * float64(24*time.Hour))
}

func logSkipped(operation string, skipped []SkippedItem) {
	for _, s := range skipped {
		log.Warn().
			Err(s.Err).
			Str("product_id", s.ProductID).
			Str("sku", s.SKU).
			Str("operation", operation).
			Msg("Skipping product with malformed data")
	}
	if len(skipped) > 0 {
		metrics.ItemsSkipped.WithLabelValues(operation).Add(float64(len(skipped)))
	}
}
