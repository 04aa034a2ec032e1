package events

import (
	"context"
	"encoding/json"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher es el transporte alternativo para despliegues con broker.
// El writer es genérico: el canal del publish se usa como topic del mensaje.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, channel, eventName string, payload any) error {
	data, err := json.Marshal(map[string]any{
		"event": eventName,
		"data":  payload,
	})
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: channel,
		Key:   []byte(eventName),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("error publishing to Kafka",
			zap.String("topic", channel),
			zap.String("event", eventName),
			zap.Error(err),
		)
		return err
	}

	p.log.Debug("event published",
		zap.String("topic", channel),
		zap.String("event", eventName),
	)
	return nil
}

var _ domain.TransportPublisher = (*KafkaPublisher)(nil)
