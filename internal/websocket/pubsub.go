package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(ctx context.Context, channel string, message []byte) error

	// Subscribe подписывается на канал; возвращаемый канал закрывается при отмене ctx
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Close закрывает все активные подписки
	Close() error
}

// RedisPubSub реализует PubSubProvider поверх Redis Pub/Sub
type RedisPubSub struct {
	client redis.UniversalClient
	log    logrus.FieldLogger

	mu   sync.Mutex
	subs []*redis.PubSub
}

// NewRedisPubSub создает провайдер на существующем клиенте. Клиент не закрывается в Close.
func NewRedisPubSub(client redis.UniversalClient, log logrus.FieldLogger) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}
	return &RedisPubSub{client: client, log: log.WithField("component", "redis_pubsub")}, nil
}

// Publish публикует сообщение в указанный канал
func (p *RedisPubSub) Publish(ctx context.Context, channel string, message []byte) error {
	if err := p.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на указанный канал Redis
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := p.client.Subscribe(ctx, channel)
	// Ждем подтверждения подписки
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}

	p.mu.Lock()
	p.subs = append(p.subs, sub)
	p.mu.Unlock()

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	p.log.WithField("channel", channel).Info("Subscribed to Redis channel")
	return out, nil
}

// Close закрывает все активные подписки
func (p *RedisPubSub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for _, sub := range p.subs {
		if err := sub.Close(); err != nil {
			lastErr = err
		}
	}
	p.subs = nil
	return lastErr
}
