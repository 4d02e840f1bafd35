package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/replenishment"
)

const defaultTopTurnover = 10

// InventoryOverview aggregates category stats, the turnover ranking and
// the ABC bucket summaries for the active catalog.
func (s *ReplenishmentService) InventoryOverview(ctx context.Context, topN int) (*domain.InventoryOverview, error) {
	if topN <= 0 {
		topN = defaultTopTurnover
	}

	if overview, ok, err := s.cache.GetOverview(ctx, topN); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get overview failed")
	}

	var (
		items []domain.StockItem
		abc   *domain.ABCResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.ListActiveItems(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		abc, err = s.ClassifyABC(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := buildOverview(items, topN)
	overview.ABC = abc.Summaries

	if err := s.cache.SetOverview(ctx, topN, overview); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set overview failed")
	}
	return overview, nil
}

func buildOverview(items []domain.StockItem, topN int) *domain.InventoryOverview {
	overview := &domain.InventoryOverview{
		Categories:  []domain.CategoryStats{},
		TopTurnover: []domain.TurnoverEntry{},
	}

	byCategory := make(map[string]*domain.CategoryStats)
	turnover := make([]domain.TurnoverEntry, 0, len(items))

	for _, item := range items {
		value := item.InventoryValue()
		lowStock := item.CurrentStock <= item.ReorderPoint

		stats, ok := byCategory[item.Category]
		if !ok {
			stats = &domain.CategoryStats{Category: item.Category}
			byCategory[item.Category] = stats
		}
		stats.Count++
		stats.Value += value
		if lowStock {
			stats.LowStock++
			overview.LowStockCount++
		}

		overview.TotalInventoryValue += value
		turnover = append(turnover, domain.TurnoverEntry{
			ProductID: item.ID,
			Name:      item.Name,
			SKU:       item.SKU,
			Category:  item.Category,
			Turnover:  replenishment.InventoryTurnover(item.TotalSold, item.UnitCost, item.CurrentStock),
		})
	}
	overview.ProductCount = len(items)

	for _, stats := range byCategory {
		overview.Categories = append(overview.Categories, *stats)
	}
	sort.Slice(overview.Categories, func(i, j int) bool {
		if overview.Categories[i].Value != overview.Categories[j].Value {
			return overview.Categories[i].Value > overview.Categories[j].Value
		}
		return overview.Categories[i].Category < overview.Categories[j].Category
	})

	sort.SliceStable(turnover, func(i, j int) bool {
		if turnover[i].Turnover != turnover[j].Turnover {
			return turnover[i].Turnover > turnover[j].Turnover
		}
		return turnover[i].ProductID < turnover[j].ProductID
	})
	if len(turnover) > topN {
		turnover = turnover[:topN]
	}
	overview.TopTurnover = turnover

	return overview
}

// SupplierPerformance scores every active supplier, best first.
func (s *ReplenishmentService) SupplierPerformance(ctx context.Context) ([]domain.SupplierPerformance, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SupplierPerformance, 0, len(suppliers))
	for _, sup := range suppliers {
		result = append(result, domain.SupplierPerformance{
			SupplierProfile: sup,
			Score:           replenishment.SupplierPerformanceScore(sup.AverageLeadTimeDays, sup.OnTimeDeliveryRate, sup.QualityRating),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result, nil
}
