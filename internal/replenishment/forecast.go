package replenishment

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

const (
	DefaultForecastDays = 30
	MaxForecastDays     = 365

	forecastDateLayout = "2006-01-02"
)

// NoiseSource yields uniform values in [0,1). *rand.Rand satisfies it.
type NoiseSource interface {
	Float64() float64
}

// NewNoise returns a time-seeded noise source.
func NewNoise() NoiseSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededNoise returns a reproducible noise source.
func NewSeededNoise(seed int64) NoiseSource {
	return rand.New(rand.NewSource(seed))
}

// Forecaster projects daily demand over a bounded horizon.
type Forecaster struct {
	// DefaultDays replaces a non-positive horizon; zero means DefaultForecastDays.
	DefaultDays int
}

func (f Forecaster) horizon(days int) int {
	if days <= 0 {
		days = f.DefaultDays
	}
	if days <= 0 {
		days = DefaultForecastDays
	}
	if days > MaxForecastDays {
		days = MaxForecastDays
	}
	return days
}

// Forecast returns one point per day for the days after from. Each point is
// the base daily demand (annual demand / 365) perturbed by ±demand
// variability scaled by noise, floored at 0 and rounded to two decimals.
// The total is the sum of the rounded points; stockout risk is High when it
// exceeds current stock.
func (f Forecaster) Forecast(item domain.StockItem, days int, noise NoiseSource, from time.Time) (domain.ForecastSeries, error) {
	if err := checkParams(
		param{"annual_demand", item.AnnualDemand},
		param{"demand_variability", item.DemandVariability},
	); err != nil {
		return domain.ForecastSeries{}, fmt.Errorf("product %s: %w", item.ID, err)
	}
	if noise == nil {
		noise = NewNoise()
	}

	days = f.horizon(days)
	base := item.AnnualDemand / daysPerYear
	start := from.UTC()

	points := make([]domain.ForecastPoint, 0, days)
	var total float64
	for i := 1; i <= days; i++ {
		// map [0,1) onto [-1,1)
		n := (noise.Float64() - 0.5) * 2
		demand := roundFloat(math.Max(0, base+base*item.DemandVariability*n), 2)
		total += demand

		points = append(points, domain.ForecastPoint{
			Date:            start.AddDate(0, 0, i).Format(forecastDateLayout),
			ProjectedDemand: demand,
		})
	}
	// drop float drift from summing two-decimal values
	total = roundFloat(total, 2)

	summary := domain.ForecastSummary{
		TotalProjectedDemand: total,
		StockoutRisk:         domain.StockoutRiskLow,
		RecommendedAction:    domain.ActionSufficient,
	}
	if total > float64(item.CurrentStock) {
		summary.StockoutRisk = domain.StockoutRiskHigh
		summary.RecommendedAction = domain.ActionReorder
	}

	return domain.ForecastSeries{
		ProductID:    item.ID,
		SKU:          item.SKU,
		Name:         item.Name,
		CurrentStock: item.CurrentStock,
		ReorderPoint: item.ReorderPoint,
		Points:       points,
		Summary:      summary,
	}, nil
}
