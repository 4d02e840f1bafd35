package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

// RedisPublisher fans events out on a Redis pub/sub channel for live dashboards.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher publishes on channel using an existing client. The
// client is owned by the caller and is not closed by Close.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) PublishReorderAlert(ctx context.Context, event domain.ReorderAlertEvent) error {
	return p.publish(ctx, event)
}

func (p *RedisPublisher) PublishPlanCreated(ctx context.Context, event domain.PlanCreatedEvent) error {
	return p.publish(ctx, event)
}

func (p *RedisPublisher) PublishStockUpdated(ctx context.Context, event domain.StockUpdatedEvent) error {
	return p.publish(ctx, event)
}

func (p *RedisPublisher) publish(ctx context.Context, event interface{}) error {
	msgJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe opens a subscription on the publisher's channel
func (p *RedisPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, p.channel)
}

func (p *RedisPublisher) Close() error {
	return nil
}

var _ Sink = (*RedisPublisher)(nil)
