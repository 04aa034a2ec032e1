package events

import (
	"context"
	"encoding/json"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPublisher difunde eventos por canales pub/sub de Redis. El payload
// viaja como sobre JSON {"event": ..., "data": ...}, que es lo que espera
// el consumidor de tiempo real.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisPublisher(client *redis.Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, eventName string, payload any) error {
	data, err := json.Marshal(map[string]any{
		"event": eventName,
		"data":  payload,
	})
	if err != nil {
		return err
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.log.Error("error publishing to Redis",
			zap.String("channel", channel),
			zap.String("event", eventName),
			zap.Error(err),
		)
		return err
	}

	p.log.Debug("event published",
		zap.String("channel", channel),
		zap.String("event", eventName),
	)
	return nil
}

var _ domain.TransportPublisher = (*RedisPublisher)(nil)
