package notifications

import (
	"context"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"go.uber.org/zap"
)

// LogNotifier es el sink de desarrollo: solo deja traza estructurada.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Publish(ctx context.Context, destination string, event domain.Event) error {
	n.log.Info("🔔 notification",
		zap.String("to", destination),
		zap.String("event", event.EventName()),
		zap.Any("payload", event),
	)
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
