package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

func TestKafkaPublisher_PublishReorderAlert(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	p := NewKafkaPublisherWithProducer(producer, "supplyflow")

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event domain.ReorderAlertEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Count != 1 || len(event.Items) != 1 || event.Items[0].SKU != "SKU-1" {
			return fmt.Errorf("unexpected payload: %s", val)
		}
		return nil
	})

	event := domain.ReorderAlertEvent{
		EventID:   "evt-1",
		EventType: domain.EventTypeReorderAlert,
		Count:     1,
		Items:     []domain.ReorderAlertItem{{ID: "p1", SKU: "SKU-1", CurrentStock: 2, ReorderPoint: 10}},
		Timestamp: time.Now(),
	}
	if err := p.PublishReorderAlert(context.Background(), event); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Failed to close producer: %v", err)
	}
}

func TestKafkaPublisher_PublishPlanCreated(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	p := NewKafkaPublisherWithProducer(producer, "supplyflow")

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event domain.PlanCreatedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Plan.ID != "plan-1" || !event.Plan.TotalAmount.Equal(decimal.RequireFromString("37.5")) {
			return fmt.Errorf("unexpected plan: %+v", event.Plan)
		}
		return nil
	})

	event := domain.PlanCreatedEvent{
		EventID:   "evt-2",
		EventType: domain.EventTypePlanCreated,
		Plan:      domain.ReorderPlan{ID: "plan-1", SupplierID: "acme", TotalAmount: decimal.RequireFromString("37.5")},
	}
	if err := p.PublishPlanCreated(context.Background(), event); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Failed to close producer: %v", err)
	}
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	p := NewKafkaPublisherWithProducer(producer, "")

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := p.PublishStockUpdated(context.Background(), domain.StockUpdatedEvent{EventID: "evt-3", ProductID: "p1"})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Errorf("Expected ErrOutOfBrokers, got %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Failed to close producer: %v", err)
	}
}

func TestKafkaPublisher_Topic(t *testing.T) {
	if got := NewKafkaPublisherWithProducer(nil, "supplyflow").Topic(TopicReorderAlerts); got != "supplyflow.reorder-alerts" {
		t.Errorf("Expected prefixed topic, got %s", got)
	}
	if got := NewKafkaPublisherWithProducer(nil, "").Topic(TopicStockUpdates); got != "stock-updates" {
		t.Errorf("Expected bare topic, got %s", got)
	}
}
