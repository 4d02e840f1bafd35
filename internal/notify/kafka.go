package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

// Kafka topic suffixes, appended to the configured prefix
const (
	TopicReorderAlerts = "reorder-alerts"
	TopicPlansCreated  = "plans-created"
	TopicStockUpdates  = "stock-updates"
)

// KafkaPublisher wraps a Kafka sync producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	prefix   string
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(brokers []string, topicPrefix string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info().
		Strs("brokers", brokers).
		Str("topic_prefix", topicPrefix).
		Msg("Kafka publisher initialized")

	return NewKafkaPublisherWithProducer(producer, topicPrefix), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, prefix: topicPrefix}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

// Topic returns the full topic name for a suffix
func (p *KafkaPublisher) Topic(suffix string) string {
	if p.prefix == "" {
		return suffix
	}
	return p.prefix + "." + suffix
}

func (p *KafkaPublisher) PublishReorderAlert(ctx context.Context, event domain.ReorderAlertEvent) error {
	return p.publish(ctx, p.Topic(TopicReorderAlerts), "reorder_check", event.EventType, event.EventID, event)
}

// PublishPlanCreated keys by supplier so plans for one supplier stay ordered
func (p *KafkaPublisher) PublishPlanCreated(ctx context.Context, event domain.PlanCreatedEvent) error {
	return p.publish(ctx, p.Topic(TopicPlansCreated), "supplier_"+event.Plan.SupplierID, event.EventType, event.EventID, event)
}

func (p *KafkaPublisher) PublishStockUpdated(ctx context.Context, event domain.StockUpdatedEvent) error {
	return p.publish(ctx, p.Topic(TopicStockUpdates), "product_"+event.ProductID, event.EventType, event.EventID, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key, eventType, eventID string, event interface{}) error {
	// Marshal event to JSON
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(eventBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(eventType)},
			{Key: []byte("event_id"), Value: []byte(eventID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("event_id", eventID).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ Sink = (*KafkaPublisher)(nil)
