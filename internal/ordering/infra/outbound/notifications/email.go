// Package notifications implementa el sink de notificaciones que consumen
// los event handlers.
package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"go.uber.org/zap"
)

var orderCreatedTmpl = template.Must(template.New("order_created").Parse(
	`Tu pedido {{.OrderID}} se ha creado correctamente.
Estado: {{.Status}}
Total: {{printf "%.2f" .TotalCost}} EUR
Consumo: {{.ConsumeLocation}}
`))

var orderStatusTmpl = template.Must(template.New("order_status_changed").Parse(
	`Tu pedido {{.OrderID}} ha cambiado de estado.
Nuevo estado: {{.Status}}
Actualizado: {{.UpdatedAt.Format "2006-01-02 15:04"}}
`))

// EmailNotifier envía emails por SMTP plano (MailHog en local).
type EmailNotifier struct {
	addr string // host:port del servidor SMTP
	from string
	log  *zap.Logger
}

func NewEmailNotifier(addr, from string, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{addr: addr, from: from, log: log}
}

func (n *EmailNotifier) Publish(ctx context.Context, destination string, event domain.Event) error {
	subject, body, err := render(event)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", n.from, destination, subject, body)
	if err := smtp.SendMail(n.addr, nil, n.from, []string{destination}, []byte(msg)); err != nil {
		n.log.Error("error sending email",
			zap.String("to", destination),
			zap.String("event", event.EventName()),
			zap.Error(err),
		)
		return err
	}

	n.log.Info("📧 email sent", zap.String("to", destination), zap.String("event", event.EventName()))
	return nil
}

func render(event domain.Event) (subject, body string, err error) {
	var buf bytes.Buffer
	switch e := event.(type) {
	case domain.OrderCreated:
		if err := orderCreatedTmpl.Execute(&buf, e); err != nil {
			return "", "", err
		}
		return "Tu pedido se ha creado", buf.String(), nil
	case domain.OrderStatusChanged:
		if err := orderStatusTmpl.Execute(&buf, e); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("Tu pedido está %s", e.Status), buf.String(), nil
	default:
		return "", "", fmt.Errorf("no email template for event %s", event.EventName())
	}
}

var _ domain.Notifier = (*EmailNotifier)(nil)
