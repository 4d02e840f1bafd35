package replenishment

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

type constantNoise float64

func (c constantNoise) Float64() float64 { return float64(c) }

var forecastStart = time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)

func TestForecast_SeededIsReproducible(t *testing.T) {
	item := newTestItem("p1", 50)
	f := Forecaster{}

	first, err := f.Forecast(item, 30, NewSeededNoise(42), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := f.Forecast(item, 30, NewSeededNoise(42), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical series for the same seed")
	}
}

func TestForecast_StockoutRisk(t *testing.T) {
	f := Forecaster{}

	item := newTestItem("p1", 0)
	item.AnnualDemand = 3650
	series, err := f.Forecast(item, 30, NewSeededNoise(7), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if series.Summary.TotalProjectedDemand <= 0 {
		t.Fatalf("Expected positive projected demand, got %v", series.Summary.TotalProjectedDemand)
	}

	item.CurrentStock = int(series.Summary.TotalProjectedDemand) - 1
	series, err = f.Forecast(item, 30, NewSeededNoise(7), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if series.Summary.StockoutRisk != domain.StockoutRiskHigh {
		t.Errorf("Expected High risk with stock below projected demand, got %s", series.Summary.StockoutRisk)
	}
	if series.Summary.RecommendedAction != domain.ActionReorder {
		t.Errorf("Expected %q, got %q", domain.ActionReorder, series.Summary.RecommendedAction)
	}

	item.CurrentStock = 1_000_000
	series, err = f.Forecast(item, 30, NewSeededNoise(7), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if series.Summary.StockoutRisk != domain.StockoutRiskLow {
		t.Errorf("Expected Low risk with ample stock, got %s", series.Summary.StockoutRisk)
	}
}

func TestForecast_PointsAndDates(t *testing.T) {
	item := newTestItem("p1", 100)
	item.AnnualDemand = 365

	series, err := Forecaster{}.Forecast(item, 3, constantNoise(0.5), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expectedDates := []string{"2024-01-31", "2024-02-01", "2024-02-02"}
	if len(series.Points) != len(expectedDates) {
		t.Fatalf("Expected %d points, got %d", len(expectedDates), len(series.Points))
	}
	for i, p := range series.Points {
		if p.Date != expectedDates[i] {
			t.Errorf("Point %d: expected date %s, got %s", i, expectedDates[i], p.Date)
		}
		if p.ProjectedDemand != 1 {
			t.Errorf("Point %d: expected demand 1 with neutral noise, got %v", i, p.ProjectedDemand)
		}
	}
	if series.Summary.TotalProjectedDemand != 3 {
		t.Errorf("Expected total 3, got %v", series.Summary.TotalProjectedDemand)
	}
}

func TestForecast_NeverNegative(t *testing.T) {
	item := newTestItem("p1", 100)
	item.DemandVariability = 3

	series, err := Forecaster{}.Forecast(item, 10, constantNoise(0), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, p := range series.Points {
		if p.ProjectedDemand != 0 {
			t.Errorf("Point %d: expected demand floored at 0, got %v", i, p.ProjectedDemand)
		}
	}
}

func TestForecast_Horizon(t *testing.T) {
	item := newTestItem("p1", 100)

	tests := []struct {
		name     string
		f        Forecaster
		days     int
		expected int
	}{
		{name: "default", f: Forecaster{}, days: 0, expected: DefaultForecastDays},
		{name: "configured_default", f: Forecaster{DefaultDays: 14}, days: -1, expected: 14},
		{name: "explicit", f: Forecaster{}, days: 90, expected: 90},
		{name: "capped", f: Forecaster{}, days: 1000, expected: MaxForecastDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := tt.f.Forecast(item, tt.days, NewSeededNoise(1), forecastStart)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(series.Points) != tt.expected {
				t.Errorf("Expected %d points, got %d", tt.expected, len(series.Points))
			}
		})
	}
}

func TestForecast_InvalidItem(t *testing.T) {
	item := newTestItem("p1", 100)
	item.AnnualDemand = -1

	if _, err := (Forecaster{}).Forecast(item, 30, NewSeededNoise(1), forecastStart); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

func TestForecast_TotalIsSumOfRoundedPoints(t *testing.T) {
	item := newTestItem("p1", 10)
	item.AnnualDemand = 0.33335 * 365

	series, err := Forecaster{}.Forecast(item, 30, constantNoise(0.5), forecastStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var sum float64
	for _, p := range series.Points {
		if p.ProjectedDemand != 0.33 {
			t.Fatalf("Expected each point rounded to 0.33, got %v", p.ProjectedDemand)
		}
		sum += p.ProjectedDemand
	}
	if series.Summary.TotalProjectedDemand != roundFloat(sum, 2) || series.Summary.TotalProjectedDemand != 9.9 {
		t.Errorf("Expected total 9.9 matching the points, got %v", series.Summary.TotalProjectedDemand)
	}
	// 10 units on hand cover 9.9 projected
	if series.Summary.StockoutRisk != domain.StockoutRiskLow {
		t.Errorf("Expected Low risk, got %s", series.Summary.StockoutRisk)
	}
}
