package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ---------- Interfaces (Ports) ----------

// UserRepository persiste usuarios y lleva el conjunto "seen" del scope.
// Get devuelve (nil, nil) cuando el usuario no existe; la ausencia nunca es
// un error del repositorio, eso lo decide el handler.
type UserRepository interface {
	Add(ctx context.Context, u *User) error
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, u *User) error

	// Drain vacía las colas de eventos de los agregados vistos.
	// Solo debe llamarlo el Unit of Work.
	Drain() []Event
}

// ProductRepository persiste productos (con sus variaciones embebidas).
type ProductRepository interface {
	Add(ctx context.Context, p *Product) error
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, p *Product) error
	GetAll(ctx context.Context, page, pageSize int, filters map[string]any) ([]*Product, error)

	Drain() []Event
}

// VariationRepository accede a variaciones sueltas (lookup de precios).
type VariationRepository interface {
	Add(ctx context.Context, v *Variation) error
	Get(ctx context.Context, id uuid.UUID) (*Variation, error)
	Update(ctx context.Context, v *Variation) error
	Delete(ctx context.Context, v *Variation) error
}

// OrderRepository persiste pedidos. Add encola un OrderCreated derivado del
// pedido persistido: la emisión del evento de creación es responsabilidad
// del repositorio, a diferencia del resto de eventos de pedido.
type OrderRepository interface {
	Add(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, o *Order) error
	GetAll(ctx context.Context, page, pageSize int, filters map[string]any) ([]*Order, error)

	Drain() []Event
}

// OrderItemRepository accede a líneas de pedido sueltas.
type OrderItemRepository interface {
	Add(ctx context.Context, it *OrderItem) error
	Get(ctx context.Context, id uuid.UUID) (*OrderItem, error)
	Update(ctx context.Context, it *OrderItem) error
}

// Notifier es el sink de notificaciones (email, push). Lo invocan los
// event handlers, nunca el bus directamente.
type Notifier interface {
	Publish(ctx context.Context, destination string, event Event) error
}

// TransportPublisher difunde eventos a otros procesos (pub/sub). Es
// fire-and-forget: un fallo de entrega se loggea y jamás bloquea el éxito
// del comando.
type TransportPublisher interface {
	Publish(ctx context.Context, channel, eventName string, payload any) error
}

// Canales del transporte de integración. Publicador y suscriptores deben
// usar los mismos nombres, sea el transporte Redis pub/sub o Kafka.
const (
	ChannelOrders   = "orders"
	ChannelProducts = "products"
)

// PasswordHasher es el colaborador de hashing de contraseñas.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// OrderAnalytics registra hechos de pedido para el equipo de analítica.
type OrderAnalytics interface {
	RecordCreated(ctx context.Context, e OrderCreated) error
	RecordStatusChanged(ctx context.Context, e OrderStatusChanged) error
}

// OrderView es el read model de un pedido, mantenido por proyección.
type OrderView struct {
	OrderID         uuid.UUID       `bson:"_id" json:"order_id"`
	UserID          uuid.UUID       `bson:"userId" json:"user_id"`
	Status          OrderStatus     `bson:"status" json:"status"`
	TotalCost       float64         `bson:"totalCost" json:"total_cost"`
	ConsumeLocation ConsumeLocation `bson:"consumeLocation" json:"consume_location"`
	ItemCount       int             `bson:"itemCount" json:"item_count"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updated_at"`
}

// OrderViews mantiene y consulta el read model de pedidos.
type OrderViews interface {
	ProjectCreated(ctx context.Context, e OrderCreated) error
	ProjectStatusChanged(ctx context.Context, e OrderStatusChanged) error
	Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
}

// CatalogCache cachea lecturas del catálogo.
type CatalogCache interface {
	// Get intenta poblar dest (puntero). Devuelve (true, nil) en hit.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error
	Delete(ctx context.Context, key string) error
}

// CacheKeyProduct forma una key consistente de cache para un producto.
func CacheKeyProduct(id uuid.UUID) string {
	return fmt.Sprintf("product:id:%s", id.String())
}

// CacheKeyCatalogPage forma la key de una página del catálogo.
func CacheKeyCatalogPage(page int) string {
	return fmt.Sprintf("catalog:page:%d", page)
}
