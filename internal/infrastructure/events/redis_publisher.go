package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"payment_service/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher broadcasts payment events on a Redis Pub/Sub channel.
type RedisPublisher struct {
	client  publisher
	channel string
}

var _ interfaces.IPaymentEventPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher connects to url and verifies the connection.
func NewRedisPublisher(ctx context.Context, url, channel string) (*RedisPublisher, *redis.Client, error) {
	if url == "" {
		return nil, nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return newRedisPublisher(raw, channel), raw, nil
}

func newRedisPublisher(client publisher, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event interfaces.PaymentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding payment event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing %s to %s: %w", event.Type, p.channel, err)
	}
	return nil
}

// NoopPublisher drops every event. Used when Redis is not configured.
type NoopPublisher struct{}

var _ interfaces.IPaymentEventPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, interfaces.PaymentEvent) error { return nil }
