package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/andresuchdata/supplyflow/internal/cache"
	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/notify"
	"github.com/andresuchdata/supplyflow/internal/replenishment"
	"github.com/andresuchdata/supplyflow/internal/repository"
)

// ReplenishmentService wires the replenishment engine to storage, the
// analytics cache, notification sinks and the plan exporter.
type ReplenishmentService struct {
	store      repository.Store
	sink       notify.Sink
	cache      cache.AnalyticsCache
	exporter   *PlanExporter
	evaluator  *replenishment.Evaluator
	planner    *replenishment.Planner
	monitor    *replenishment.Monitor
	forecaster replenishment.Forecaster

	// planMu serializes planning passes; planGroup lets concurrent
	// callers of the same pass share its result.
	planMu    sync.Mutex
	planGroup singleflight.Group

	now func() time.Time
}

// NewReplenishmentService builds the service. sink, cacheImpl and exporter may be nil.
func NewReplenishmentService(
	store repository.Store,
	cfg config.ReplenishmentConfig,
	sink notify.Sink,
	cacheImpl cache.AnalyticsCache,
	exporter *PlanExporter,
) *ReplenishmentService {
	if sink == nil {
		sink = notify.NewMulti(notify.LogSink{})
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}

	evaluator := replenishment.NewEvaluator(replenishment.NewZScorer(cfg.ZScoreMode, cfg.ServiceLevelThreshold))

	return &ReplenishmentService{
		store:      store,
		sink:       sink,
		cache:      cacheImpl,
		exporter:   exporter,
		evaluator:  evaluator,
		planner:    replenishment.NewPlanner(evaluator),
		monitor:    replenishment.NewMonitor(store, sink, evaluator),
		forecaster: replenishment.Forecaster{DefaultDays: cfg.ForecastDays},
		now:        time.Now,
	}
}

// Monitor exposes the reorder monitor for the scheduler.
func (s *ReplenishmentService) Monitor() *replenishment.Monitor {
	return s.monitor
}

// Evaluate loads a product and computes its replenishment decision.
func (s *ReplenishmentService) Evaluate(ctx context.Context, productID string) (*domain.ReorderCandidate, error) {
	item, err := s.store.GetItem(ctx, productID)
	if err != nil {
		return nil, err
	}

	decision, err := s.evaluator.Evaluate(*item)
	if err != nil {
		return nil, err
	}

	return &domain.ReorderCandidate{Item: *item, Decision: decision}, nil
}

// CheckReorderPoints runs an on-demand reorder check.
func (s *ReplenishmentService) CheckReorderPoints(ctx context.Context) ([]domain.ReorderCandidate, error) {
	return s.monitor.Check(ctx)
}

// ClassifyABC classifies the active catalog. An empty catalog yields empty
// buckets rather than an error.
func (s *ReplenishmentService) ClassifyABC(ctx context.Context) (*domain.ABCResult, error) {
	if result, ok, err := s.cache.GetABC(ctx); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get abc failed")
	}

	items, err := s.store.ListActiveItems(ctx)
	if err != nil {
		return nil, err
	}

	result, err := replenishment.ClassifyABC(items)
	if errors.Is(err, domain.ErrEmptyCatalog) {
		empty := emptyABCResult()
		return &empty, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetABC(ctx, &result); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set abc failed")
	}
	return &result, nil
}

// Forecast projects demand for one product. A nil seed uses a time-seeded source.
func (s *ReplenishmentService) Forecast(ctx context.Context, productID string, days int, seed *int64) (*domain.ForecastSeries, error) {
	item, err := s.store.GetItem(ctx, productID)
	if err != nil {
		return nil, err
	}

	series, err := s.forecaster.Forecast(*item, days, noiseFor(seed), s.now())
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// ForecastCatalog projects demand for every active product. Products with
// malformed data are logged and left out.
func (s *ReplenishmentService) ForecastCatalog(ctx context.Context, days int, seed *int64) ([]domain.ForecastSeries, error) {
	items, err := s.store.ListActiveItems(ctx)
	if err != nil {
		return nil, err
	}

	noise := noiseFor(seed)
	from := s.now()

	series := make([]domain.ForecastSeries, 0, len(items))
	for _, item := range items {
		f, err := s.forecaster.Forecast(item, days, noise, from)
		if err != nil {
			log.Warn().Err(err).Str("product_id", item.ID).Msg("forecast: skipping product")
			continue
		}
		series = append(series, f)
	}
	return series, nil
}

func noiseFor(seed *int64) replenishment.NoiseSource {
	if seed != nil {
		return replenishment.NewSeededNoise(*seed)
	}
	return replenishment.NewNoise()
}

func emptyABCResult() domain.ABCResult {
	result := domain.ABCResult{
		A: []domain.ABCEntry{},
		B: []domain.ABCEntry{},
		C: []domain.ABCEntry{},
	}
	for _, b := range []struct {
		bucket domain.ABCBucket
		target float64
	}{{domain.BucketA, 80}, {domain.BucketB, 15}, {domain.BucketC, 5}} {
		result.Summaries = append(result.Summaries, domain.ABCSummary{Bucket: b.bucket, TargetPct: b.target})
	}
	return result
}

func (s *ReplenishmentService) invalidateAnalytics(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analytics: cache invalidation failed")
	}
}
