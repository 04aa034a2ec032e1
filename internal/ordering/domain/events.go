package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event es un hecho inmutable que ya ocurrió. Cero, uno o varios handlers
// pueden estar suscritos a cada tipo; ninguno devuelve valor al emisor.
type Event interface {
	EventName() string
}

// Los nombres de evento se definen como constantes string, igual que los
// tipos de la tabla outbox.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventVariationAdded     = "variation.added"
	EventVariationDeleted   = "variation.deleted"
)

// OrderCreated se emite al persistir un pedido nuevo. La emisión es
// responsabilidad del repositorio de pedidos, no de un método de negocio.
type OrderCreated struct {
	OrderID         uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	TotalCost       float64         `json:"total_cost"`
	ConsumeLocation ConsumeLocation `json:"consume_location"`
	Items           []OrderItem     `json:"order_items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (OrderCreated) EventName() string { return EventOrderCreated }

// OrderStatusChanged se emite en cada transición válida del pedido.
type OrderStatusChanged struct {
	OrderID         uuid.UUID       `json:"order_id"`
	UserID          uuid.UUID       `json:"user_id"`
	TotalCost       float64         `json:"total_cost"`
	Status          OrderStatus     `json:"status"`
	ConsumeLocation ConsumeLocation `json:"consume_location"`
	Items           []OrderItem     `json:"order_items"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (OrderStatusChanged) EventName() string { return EventOrderStatusChanged }

// VariationAdded y VariationDeleted no tienen handlers registrados hoy;
// quedan disponibles para el equipo de analítica.
type VariationAdded struct {
	VariationID uuid.UUID `json:"variation_id"`
	ProductID   uuid.UUID `json:"product_id"`
}

func (VariationAdded) EventName() string { return EventVariationAdded }

type VariationDeleted struct {
	VariationID uuid.UUID `json:"variation_id"`
}

func (VariationDeleted) EventName() string { return EventVariationDeleted }
