// Package events escucha los canales de integración (Redis pub/sub o Kafka)
// por los que el propio servicio publica sus eventos de pedido.
package events

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler procesa un mensaje de integración ya leído del transporte.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// envelope es el formato con el que los publishers serializan los eventos.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OrderConsumer registra en el log los eventos de pedido que llegan por el
// transporte. Sirve de sonda de extremo a extremo: si esto no loguea, la
// publicación está rota.
type OrderConsumer struct {
	log *zap.Logger
}

func NewOrderConsumer(logger *zap.Logger) *OrderConsumer {
	return &OrderConsumer{log: logger}
}

func (c *OrderConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}
	c.log.Info("📨 Evento de pedido recibido",
		zap.String("event", env.Event),
		zap.ByteString("data", env.Data),
	)
}

// ---------------- Adaptadores de transporte ----------------

// RedisSubscriber escucha un canal de Redis pub/sub y delega en el handler.
type RedisSubscriber struct {
	client  *redis.Client
	channel string
	handler MessageHandler
	log     *zap.Logger
}

func NewRedisSubscriber(client *redis.Client, channel string, handler MessageHandler, log *zap.Logger) *RedisSubscriber {
	return &RedisSubscriber{client: client, channel: channel, handler: handler, log: log}
}

// Start inicia el bucle de consumo en una goroutine.
func (s *RedisSubscriber) Start(ctx context.Context) {
	sub := s.client.Subscribe(ctx, s.channel)
	s.log.Info("🎧 Iniciando suscriptor de Redis...", zap.String("channel", s.channel))

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				s.log.Info("Suscriptor de Redis detenido.", zap.String("channel", s.channel))
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.handler.HandleMessage(ctx, msg.Channel, []byte(msg.Payload))
			}
		}
	}()
}

// KafkaSubscriber escucha un topic de Kafka y delega en el handler.
type KafkaSubscriber struct {
	reader  *kafka.Reader
	handler MessageHandler
	log     *zap.Logger
}

func NewKafkaSubscriber(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *KafkaSubscriber {
	return &KafkaSubscriber{reader: reader, handler: handler, log: log}
}

// Start inicia el bucle de consumo en una goroutine.
func (s *KafkaSubscriber) Start(ctx context.Context) {
	s.log.Info("🎧 Iniciando consumidor de Kafka...",
		zap.String("topic", s.reader.Config().Topic),
		zap.Strings("brokers", s.reader.Config().Brokers),
	)

	go func() {
		for {
			// ReadMessage es una llamada bloqueante.
			msg, err := s.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					s.log.Info("Consumidor de Kafka detenido.", zap.String("topic", s.reader.Config().Topic))
					return
				}
				s.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
				continue
			}
			s.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
		}
	}()
}
