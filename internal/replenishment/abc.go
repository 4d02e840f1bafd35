package replenishment

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

var (
	hundred      = decimal.NewFromInt(100)
	abcCutoffA   = decimal.NewFromInt(80)
	abcCutoffB   = decimal.NewFromInt(95)
	abcTargetPct = map[domain.ABCBucket]float64{
		domain.BucketA: 80,
		domain.BucketB: 15,
		domain.BucketC: 5,
	}
)

type rankedItem struct {
	item  domain.StockItem
	value decimal.Decimal
}

// ClassifyABC ranks items by inventory value (stock × unit cost) descending
// and assigns A while the cumulative share is at most 80%, B up to 95% and C
// for the rest. Equal values are ordered by product ID so the result does
// not depend on input order. Cumulative sums are exact decimals so the
// boundaries are not subject to float drift.
func ClassifyABC(items []domain.StockItem) (domain.ABCResult, error) {
	if len(items) == 0 {
		return domain.ABCResult{}, domain.ErrEmptyCatalog
	}

	ranked := make([]rankedItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		if item.CurrentStock < 0 {
			return domain.ABCResult{}, fmt.Errorf("product %s: %w: current_stock is negative", item.ID, domain.ErrInvalidParameter)
		}
		if err := checkParams(param{"unit_cost", item.UnitCost}); err != nil {
			return domain.ABCResult{}, fmt.Errorf("product %s: %w", item.ID, err)
		}

		value := decimal.NewFromFloat(item.UnitCost).Mul(decimal.NewFromInt(int64(item.CurrentStock)))
		ranked = append(ranked, rankedItem{item: item, value: value})
		total = total.Add(value)
	}

	if total.IsZero() {
		return domain.ABCResult{}, fmt.Errorf("%w: total inventory value is zero", domain.ErrEmptyCatalog)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].value.Cmp(ranked[j].value); c != 0 {
			return c > 0
		}
		return ranked[i].item.ID < ranked[j].item.ID
	})

	result := domain.ABCResult{
		A:          make([]domain.ABCEntry, 0),
		B:          make([]domain.ABCEntry, 0),
		C:          make([]domain.ABCEntry, 0),
		TotalValue: total.InexactFloat64(),
	}
	bucketValue := map[domain.ABCBucket]decimal.Decimal{
		domain.BucketA: decimal.Zero,
		domain.BucketB: decimal.Zero,
		domain.BucketC: decimal.Zero,
	}

	cumulative := decimal.Zero
	for _, r := range ranked {
		cumulative = cumulative.Add(r.value)
		scaled := cumulative.Mul(hundred)

		bucket := domain.BucketC
		switch {
		case scaled.Cmp(abcCutoffA.Mul(total)) <= 0:
			bucket = domain.BucketA
		case scaled.Cmp(abcCutoffB.Mul(total)) <= 0:
			bucket = domain.BucketB
		}

		entry := domain.ABCEntry{
			ProductID:       r.item.ID,
			SKU:             r.item.SKU,
			Name:            r.item.Name,
			Value:           r.value.InexactFloat64(),
			CumulativeShare: scaled.Div(total).Round(2).InexactFloat64(),
			Bucket:          bucket,
		}
		bucketValue[bucket] = bucketValue[bucket].Add(r.value)

		switch bucket {
		case domain.BucketA:
			result.A = append(result.A, entry)
		case domain.BucketB:
			result.B = append(result.B, entry)
		default:
			result.C = append(result.C, entry)
		}
	}

	counts := map[domain.ABCBucket]int{
		domain.BucketA: len(result.A),
		domain.BucketB: len(result.B),
		domain.BucketC: len(result.C),
	}
	for _, bucket := range []domain.ABCBucket{domain.BucketA, domain.BucketB, domain.BucketC} {
		result.Summaries = append(result.Summaries, domain.ABCSummary{
			Bucket:    bucket,
			Count:     counts[bucket],
			Value:     bucketValue[bucket].InexactFloat64(),
			SharePct:  bucketValue[bucket].Mul(hundred).Div(total).Round(2).InexactFloat64(),
			TargetPct: abcTargetPct[bucket],
		})
	}

	return result, nil
}
