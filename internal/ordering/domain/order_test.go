package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestOrder(status OrderStatus) *Order {
	o := NewOrder(uuid.New(), uuid.New(), InHouse, nil, 12.5)
	o.Status = status
	return o
}

func TestOrder_ChangeStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		wantErr bool
	}{
		{name: "waiting a preparation", from: StatusWaiting, to: StatusPreparation},
		{name: "preparation a ready", from: StatusPreparation, to: StatusReady},
		{name: "ready a delivered", from: StatusReady, to: StatusDelivered},
		{name: "waiting a cancelled", from: StatusWaiting, to: StatusCancelled},
		{name: "preparation a cancelled", from: StatusPreparation, to: StatusCancelled},

		{name: "no se puede saltar a ready desde waiting", from: StatusWaiting, to: StatusReady, wantErr: true},
		{name: "no se puede saltar a delivered desde waiting", from: StatusWaiting, to: StatusDelivered, wantErr: true},
		{name: "no se puede volver a preparation desde ready", from: StatusReady, to: StatusPreparation, wantErr: true},
		{name: "no se puede cancelar un pedido ready", from: StatusReady, to: StatusCancelled, wantErr: true},
		{name: "no se puede cancelar un pedido delivered", from: StatusDelivered, to: StatusCancelled, wantErr: true},
		{name: "no se puede cancelar dos veces", from: StatusCancelled, to: StatusCancelled, wantErr: true},
		{name: "mismo estado es error", from: StatusPreparation, to: StatusPreparation, wantErr: true},
		{name: "un pedido cancelado no avanza", from: StatusCancelled, to: StatusPreparation, wantErr: true},
		{name: "un pedido cancelado no se prepara ni entrega", from: StatusCancelled, to: StatusDelivered, wantErr: true},
		{name: "un pedido cancelado no pasa a ready", from: StatusCancelled, to: StatusReady, wantErr: true},
		{name: "estado desconocido", from: StatusWaiting, to: OrderStatus("Flying"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := newTestOrder(tt.from)
			before := order.UpdatedAt

			err := order.ChangeStatus(tt.to, order.Items)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsValidation(err), "esperaba ValidationError, fue %T", err)
				// Fallo sin mutación: ni estado ni eventos.
				assert.Equal(t, tt.from, order.Status)
				assert.Empty(t, order.PullEvents())
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.to, order.Status)
			assert.False(t, order.UpdatedAt.Before(before))

			events := order.PullEvents()
			assert.Len(t, events, 1)
			evt, ok := events[0].(OrderStatusChanged)
			assert.True(t, ok)
			assert.Equal(t, order.ID, evt.OrderID)
			assert.Equal(t, tt.to, evt.Status)
			assert.Equal(t, order.UpdatedAt, evt.UpdatedAt)
		})
	}
}

func TestOrder_ChangeStatus_EventPorTransicion(t *testing.T) {
	order := newTestOrder(StatusWaiting)

	assert.NoError(t, order.ChangeStatus(StatusPreparation, nil))
	assert.NoError(t, order.ChangeStatus(StatusReady, nil))
	assert.NoError(t, order.ChangeStatus(StatusDelivered, nil))

	events := order.PullEvents()
	assert.Len(t, events, 3)
	want := []OrderStatus{StatusPreparation, StatusReady, StatusDelivered}
	for i, e := range events {
		assert.Equal(t, want[i], e.(OrderStatusChanged).Status)
	}

	// La cola queda vacía tras el drenaje.
	assert.Empty(t, order.PullEvents())
}
