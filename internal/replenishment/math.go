// Package replenishment holds the inventory replenishment and analytics engine:
// the order-quantity formulas, the reorder evaluator and planner, ABC
// classification, demand forecasting and the periodic reorder monitor.
package replenishment

import (
	"fmt"
	"math"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

const (
	daysPerYear = 365.0

	// Suppliers delivering in 14 days or more get a zero lead-time score
	leadTimeScoreHorizon = 14.0
	maxQualityRating     = 5.0

	onTimeReward = 0.01
	latePenalty  = 0.02
)

type param struct {
	name  string
	value float64
}

// checkParams rejects negative, NaN and infinite inputs.
func checkParams(params ...param) error {
	for _, p := range params {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", domain.ErrInvalidParameter, p.name)
		}
		if p.value < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %v)", domain.ErrInvalidParameter, p.name, p.value)
		}
	}
	return nil
}

// EOQ calculates the Economic Order Quantity sqrt(2·D·S / (unitCost·holdingCostRate)).
// Zero demand, ordering cost, holding rate or unit cost yields exactly 0.
func EOQ(annualDemand, orderingCost, unitCost, holdingCostRate float64) (float64, error) {
	if err := checkParams(
		param{"annual_demand", annualDemand},
		param{"ordering_cost", orderingCost},
		param{"unit_cost", unitCost},
		param{"holding_cost_rate", holdingCostRate},
	); err != nil {
		return 0, err
	}

	if annualDemand == 0 || orderingCost == 0 || holdingCostRate == 0 || unitCost == 0 {
		return 0, nil
	}

	holdingCost := unitCost * holdingCostRate
	return math.Sqrt((2 * annualDemand * orderingCost) / holdingCost), nil
}

// SafetyStock = ceil(z × demand std dev × √lead time), where the std dev is
// dailyDemand × demandVariability. A nil scorer uses DefaultZScore.
func SafetyStock(dailyDemand, demandVariability, leadTimeDays, serviceLevel float64, z ZScorer) (int, error) {
	if err := checkParams(
		param{"daily_demand", dailyDemand},
		param{"demand_variability", demandVariability},
		param{"lead_time_days", leadTimeDays},
		param{"service_level", serviceLevel},
	); err != nil {
		return 0, err
	}
	if serviceLevel > 1 {
		return 0, fmt.Errorf("%w: service_level must be within [0,1] (got %v)", domain.ErrInvalidParameter, serviceLevel)
	}
	if z == nil {
		z = DefaultZScore
	}

	demandStdDev := dailyDemand * demandVariability
	safetyStock := z.ZScore(serviceLevel) * demandStdDev * math.Sqrt(leadTimeDays)
	return int(math.Ceil(math.Max(0, safetyStock))), nil
}

// ReorderPoint = ceil(daily demand × lead time + safety stock).
func ReorderPoint(dailyDemand, leadTimeDays float64, safetyStock int) (int, error) {
	if err := checkParams(
		param{"daily_demand", dailyDemand},
		param{"lead_time_days", leadTimeDays},
		param{"safety_stock", float64(safetyStock)},
	); err != nil {
		return 0, err
	}

	return int(math.Ceil(dailyDemand*leadTimeDays + float64(safetyStock))), nil
}

// InventoryTurnover = cost of goods sold / inventory value.
func InventoryTurnover(totalSold int, unitCost float64, currentStock int) float64 {
	if currentStock == 0 {
		return 0
	}
	cogs := float64(totalSold) * unitCost
	avgInventory := float64(currentStock) * unitCost
	if avgInventory <= 0 {
		return 0
	}
	return cogs / avgInventory
}

// SupplierPerformanceScore averages the lead-time, on-time and quality
// sub-scores and scales the result to [0,100].
func SupplierPerformanceScore(avgLeadTime, onTimeRate, qualityRating float64) float64 {
	leadTimeScore := math.Max(0, (leadTimeScoreHorizon-avgLeadTime)/leadTimeScoreHorizon)
	deliveryScore := onTimeRate
	qualityScore := qualityRating / maxQualityRating

	score := (leadTimeScore + deliveryScore + qualityScore) / 3 * 100
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(100, math.Max(0, score))
}

// NudgeOnTimeRate applies the post-delivery adjustment to a supplier's
// on-time rate: +0.01 capped at 1 when on time, -0.02 floored at 0 when late.
func NudgeOnTimeRate(rate float64, onTime bool) float64 {
	if onTime {
		return math.Min(1, rate+onTimeReward)
	}
	return math.Max(0, rate-latePenalty)
}
