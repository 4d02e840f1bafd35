package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/metrics"
	"github.com/andresuchdata/supplyflow/internal/repository"
)

const planningKey = "auto-reorder"

// PlanAutoReorder creates one reorder plan per supplier for every product at
// or below its reorder point. Products already on a pending plan are left
// out so repeated passes do not order the same deficit twice.
//
// Only one pass runs at a time. Callers arriving while a pass for the same
// origin is in flight wait for it and receive its plans. The pass outlives a
// cancelled caller since other callers may be sharing it.
func (s *ReplenishmentService) PlanAutoReorder(ctx context.Context, origin domain.PlanOrigin) ([]domain.ReorderPlan, error) {
	if origin == "" {
		origin = domain.OriginAutoGenerated
	}

	passCtx := context.WithoutCancel(ctx)
	v, err, shared := s.planGroup.Do(planningKey+":"+string(origin), func() (interface{}, error) {
		s.planMu.Lock()
		defer s.planMu.Unlock()
		return s.planPass(passCtx, origin)
	})
	if shared {
		metrics.PlanningShared.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]domain.ReorderPlan), nil
}

func (s *ReplenishmentService) planPass(ctx context.Context, origin domain.PlanOrigin) ([]domain.ReorderPlan, error) {
	start := time.Now()

	items, err := s.store.ListActiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	pending, err := s.store.PendingProductIDs(ctx)
	if err != nil {
		return nil, err
	}
	eligible := items[:0:0]
	for _, item := range items {
		if !pending[item.ID] {
			eligible = append(eligible, item)
		}
	}

	now := s.now()
	plans, err := s.planner.Plan(eligible, origin, now)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		log.Info().
			Int("products", len(items)).
			Int("pending", len(pending)).
			Msg("Auto-reorder: nothing to plan")
		return plans, nil
	}

	for i := range plans {
		plans[i].ID = uuid.NewString()
	}

	if err := s.store.SavePlans(ctx, plans); err != nil {
		return nil, fmt.Errorf("failed to save plans: %w", err)
	}
	metrics.PlansCreated.WithLabelValues(string(origin)).Add(float64(len(plans)))

	for _, plan := range plans {
		event := domain.PlanCreatedEvent{
			EventID:   uuid.NewString(),
			EventType: domain.EventTypePlanCreated,
			Plan:      plan,
			Timestamp: now.UTC(),
		}
		if err := s.sink.PublishPlanCreated(ctx, event); err != nil {
			log.Error().Err(err).Str("plan_id", plan.ID).Msg("Failed to publish plan created event")
		}

		if s.exporter != nil {
			if _, err := s.exporter.Export(ctx, plan); err != nil {
				log.Error().Err(err).Str("plan_id", plan.ID).Msg("Failed to export plan")
			}
		}
	}

	log.Info().
		Int("plans", len(plans)).
		Str("origin", string(origin)).
		Dur("duration", time.Since(start)).
		Msg("Auto-reorder plans created")

	return plans, nil
}

func (s *ReplenishmentService) GetPlan(ctx context.Context, id string) (*domain.ReorderPlan, error) {
	return s.store.GetPlan(ctx, id)
}

func (s *ReplenishmentService) ListPlans(ctx context.Context, filter repository.PlanFilter) ([]domain.ReorderPlan, error) {
	return s.store.ListPlans(ctx, filter)
}

// ReceivePlan books a delivery: the plan becomes Delivered and each line's
// quantity (rounded up to whole units) is added to stock, all or nothing.
// When deliveredAt is given the supplier's on-time rate is nudged by
// comparing it with the expected delivery date.
func (s *ReplenishmentService) ReceivePlan(ctx context.Context, planID string, deliveredAt *time.Time) (*domain.ReorderPlan, error) {
	at := s.now()
	if deliveredAt != nil {
		at = *deliveredAt
	}

	plan, restocks, err := s.store.DeliverPlan(ctx, planID, at)
	if err != nil {
		return nil, err
	}

	if len(restocks) > 0 {
		s.invalidateAnalytics(ctx)
	}
	for _, r := range restocks {
		metrics.StockAdjustments.WithLabelValues(string(domain.StockDelivery), "ok").Inc()
		s.publishStockUpdate(ctx, r.ProductID, r.SKU, domain.StockDelivery, r.Quantity, r.CurrentStock)
	}

	if deliveredAt != nil {
		onTime := !at.After(plan.ExpectedDeliveryDate)
		supplier, err := s.store.NudgeOnTimeRate(ctx, plan.SupplierID, onTime)
		if err != nil {
			log.Error().Err(err).Str("supplier_id", plan.SupplierID).Msg("Failed to update supplier on-time rate")
		} else {
			log.Info().
				Str("supplier_id", supplier.ID).
				Bool("on_time", onTime).
				Float64("on_time_delivery_rate", supplier.OnTimeDeliveryRate).
				Msg("Supplier delivery performance updated")
		}
	}

	return plan, nil
}
