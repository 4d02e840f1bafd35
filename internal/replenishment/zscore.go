package replenishment

import (
	"math"
	"strings"
)

const (
	// DefaultServiceLevel applies to items that do not set one.
	DefaultServiceLevel = 0.95
	// DefaultServiceLevelThreshold splits the two tiers of TwoTierZScore.
	DefaultServiceLevelThreshold = 0.95

	// z for 95% and 90% one-sided coverage
	zHighServiceLevel = 1.645
	zLowServiceLevel  = 1.28

	// Service levels at or above this are clamped for the inverse CDF
	maxInverseServiceLevel = 0.9999
)

// ZScorer maps a target service level onto a standard normal z-score.
type ZScorer interface {
	ZScore(serviceLevel float64) float64
}

// ZScoreFunc adapts a plain function to ZScorer.
type ZScoreFunc func(serviceLevel float64) float64

// ZScore calls f.
func (f ZScoreFunc) ZScore(serviceLevel float64) float64 {
	return f(serviceLevel)
}

// TwoTierZScore returns 1.645 at or above Threshold and 1.28 below it.
type TwoTierZScore struct {
	Threshold float64
}

// ZScore falls back to DefaultServiceLevelThreshold when Threshold is unset.
func (t TwoTierZScore) ZScore(serviceLevel float64) float64 {
	threshold := t.Threshold
	if threshold <= 0 {
		threshold = DefaultServiceLevelThreshold
	}
	if serviceLevel >= threshold {
		return zHighServiceLevel
	}
	return zLowServiceLevel
}

// InverseNormalZScore is the continuous inverse of the standard normal CDF.
// Levels at or below 0.5 map to 0 so safety stock never goes negative.
type InverseNormalZScore struct{}

// ZScore clamps levels above 0.9999, where the inverse CDF diverges.
func (InverseNormalZScore) ZScore(serviceLevel float64) float64 {
	if serviceLevel <= 0.5 {
		return 0
	}
	level := math.Min(serviceLevel, maxInverseServiceLevel)
	return math.Sqrt2 * math.Erfinv(2*level-1)
}

// DefaultZScore is the two-tier lookup at the 0.95 threshold.
var DefaultZScore ZScorer = TwoTierZScore{Threshold: DefaultServiceLevelThreshold}

// NewZScorer picks a scorer by configuration mode ("two_tier" or "inverse_normal").
func NewZScorer(mode string, threshold float64) ZScorer {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "inverse_normal", "inverse", "continuous":
		return InverseNormalZScore{}
	default:
		return TwoTierZScore{Threshold: threshold}
	}
}
