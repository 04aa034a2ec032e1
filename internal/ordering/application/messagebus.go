package application

import (
	"context"
	"fmt"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"go.uber.org/zap"
)

// CommandHandler procesa un comando dentro del Unit of Work del scope y
// devuelve el resultado del comando.
type CommandHandler func(ctx context.Context, uow UnitOfWork, cmd domain.Command) (any, error)

// EventHandler reacciona a un evento. Su error nunca llega al caller del
// comando: se loggea y se sigue con el siguiente handler.
type EventHandler func(ctx context.Context, uow UnitOfWork, evt domain.Event) error

// MessageBus orquesta un comando de principio a fin: invoca su único
// handler dentro de un Unit of Work nuevo y hace fan-out de los eventos
// que la transacción fue recolectando.
type MessageBus struct {
	factory  UnitOfWorkFactory
	commands map[string]CommandHandler
	events   map[string][]EventHandler
	log      *zap.Logger
}

// NewMessageBus crea un bus vacío. Los handlers se registran una sola vez
// en el bootstrap, antes de servir tráfico.
func NewMessageBus(factory UnitOfWorkFactory, log *zap.Logger) *MessageBus {
	return &MessageBus{
		factory:  factory,
		commands: make(map[string]CommandHandler),
		events:   make(map[string][]EventHandler),
		log:      log,
	}
}

// RegisterCommand asocia el único handler de un comando. Registrar dos
// veces el mismo nombre es un error de construcción.
func (b *MessageBus) RegisterCommand(name string, h CommandHandler) {
	if _, exists := b.commands[name]; exists {
		panic(fmt.Sprintf("command handler already registered for %s", name))
	}
	b.commands[name] = h
}

// RegisterEvent añade un handler a la lista ordenada de un evento.
func (b *MessageBus) RegisterEvent(name string, h EventHandler) {
	b.events[name] = append(b.events[name], h)
}

// RegisterCommandFor registra un handler tipado, encapsulando el type
// assertion del dispatch.
func RegisterCommandFor[C domain.Command](b *MessageBus, handle func(ctx context.Context, uow UnitOfWork, cmd C) (any, error)) {
	var zero C
	b.RegisterCommand(zero.CommandName(), func(ctx context.Context, uow UnitOfWork, cmd domain.Command) (any, error) {
		c, ok := cmd.(C)
		if !ok {
			return nil, fmt.Errorf("expected command %s but got %T", zero.CommandName(), cmd)
		}
		return handle(ctx, uow, c)
	})
}

// RegisterEventFor registra un event handler tipado.
func RegisterEventFor[E domain.Event](b *MessageBus, handle func(ctx context.Context, uow UnitOfWork, evt E) error) {
	var zero E
	b.RegisterEvent(zero.EventName(), func(ctx context.Context, uow UnitOfWork, evt domain.Event) error {
		e, ok := evt.(E)
		if !ok {
			return fmt.Errorf("expected event %s but got %T", zero.EventName(), evt)
		}
		return handle(ctx, uow, e)
	})
}

// Handle procesa exactamente un comando y todos los eventos que produzca,
// de forma transitiva, antes de devolver el resultado del comando.
//
// Garantías:
//   - una sola invocación del command handler por llamada;
//   - un fallo del comando revierte la transacción y aborta antes de
//     procesar evento alguno;
//   - los fallos de event handlers se aíslan por handler: se loggean y ni
//     frenan a sus hermanos ni afectan al resultado devuelto.
func (b *MessageBus) Handle(ctx context.Context, cmd domain.Command) (any, error) {
	handler, ok := b.commands[cmd.CommandName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnroutableMessage, cmd.CommandName())
	}

	uow, err := b.factory.New(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	b.log.Debug("handling command", zap.String("command", cmd.CommandName()))
	result, err := handler(ctx, uow, cmd)
	if err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			b.log.Warn("rollback failed", zap.String("command", cmd.CommandName()), zap.Error(rbErr))
		}
		return nil, err
	}

	// Fan-out de eventos. Ojo con el orden: tras CADA invocación de handler
	// (con o sin error) se drenan los eventos recién recolectados y se
	// añaden al final de la cola. No es BFS generacional estricto y debe
	// mantenerse así: condiciona lo que ve un handler posterior del lote.
	queue := uow.CollectNewEvents()
	for len(queue) > 0 {
		evt := queue[0]
		queue = queue[1:]

		for _, h := range b.events[evt.EventName()] {
			b.log.Debug("handling event", zap.String("event", evt.EventName()))
			if err := h(ctx, uow, evt); err != nil {
				b.log.Error("exception handling event",
					zap.String("event", evt.EventName()),
					zap.Error(err),
				)
			}
			queue = append(queue, uow.CollectNewEvents()...)
		}
	}

	return result, nil
}
