package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus es el ciclo de vida de una comanda.
type OrderStatus string

const (
	StatusWaiting     OrderStatus = "Waiting"
	StatusPreparation OrderStatus = "Preparation"
	StatusReady       OrderStatus = "Ready"
	StatusDelivered   OrderStatus = "Delivered"
	StatusCancelled   OrderStatus = "Cancelled"
)

// ConsumeLocation indica dónde se consume el pedido.
type ConsumeLocation string

const (
	InHouse  ConsumeLocation = "In-House"
	TakeAway ConsumeLocation = "Take Away"
)

// OrderItem es una línea del pedido. Vive dentro del agregado Order;
// el precio unitario ya incluye la variación elegida.
type OrderItem struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Order es el agregado raíz de una comanda.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ConsumeLocation ConsumeLocation `json:"consume_location"`
	Status          OrderStatus     `json:"status"`
	TotalCost       float64         `json:"total_cost"`
	Items           []OrderItem     `json:"order_items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	EventRecorder `json:"-"`
}

// NewOrder crea un pedido en estado Waiting.
func NewOrder(id, userID uuid.UUID, location ConsumeLocation, items []OrderItem, totalCost float64) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:              id,
		UserID:          userID,
		ConsumeLocation: location,
		Status:          StatusWaiting,
		TotalCost:       totalCost,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (o *Order) AggregateID() uuid.UUID { return o.ID }

// ChangeStatus aplica la máquina de estados:
//
//	Waiting → Preparation → Ready → Delivered
//
// con Cancelled alcanzable solo desde Waiting o Preparation. Si la
// transición es ilegal devuelve un ValidationError y el agregado queda
// intacto: ni el estado cambia ni se encola evento alguno. En caso de
// éxito se encola exactamente un OrderStatusChanged con timestamp fresco.
func (o *Order) ChangeStatus(status OrderStatus, items []OrderItem) error {
	if o.Status == status {
		return NewValidation("cannot change order %s to the same status %s", o.ID, status)
	}

	switch status {
	case StatusCancelled:
		if o.Status == StatusDelivered || o.Status == StatusCancelled || o.Status == StatusReady {
			return NewValidation("cannot cancel an order that is already %s", o.Status)
		}
	case StatusPreparation:
		if o.Status != StatusWaiting {
			return NewValidation("cannot move order %s to preparation from %s", o.ID, o.Status)
		}
	case StatusReady:
		if o.Status != StatusPreparation {
			return NewValidation("cannot move order %s to ready from %s", o.ID, o.Status)
		}
	case StatusDelivered:
		if o.Status != StatusReady {
			return NewValidation("cannot move order %s to delivered from %s", o.ID, o.Status)
		}
	default:
		return NewValidation("unknown order status %q", status)
	}

	now := time.Now().UTC()
	o.Status = status
	o.UpdatedAt = now
	o.Record(OrderStatusChanged{
		OrderID:         o.ID,
		UserID:          o.UserID,
		TotalCost:       o.TotalCost,
		Status:          status,
		ConsumeLocation: o.ConsumeLocation,
		Items:           items,
		UpdatedAt:       now,
	})
	return nil
}
