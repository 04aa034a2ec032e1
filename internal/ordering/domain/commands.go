package domain

import "github.com/google/uuid"

// Command expresa una intención. Cada variante tiene exactamente un handler
// registrado en el bus y produce como mucho un resultado o un fallo.
type Command interface {
	CommandName() string
}

const (
	CmdCreateOrder          = "order.create"
	CmdCancelOrder          = "order.cancel"
	CmdUpdateOrderStatus    = "order.update_status"
	CmdGetOrder             = "order.get"
	CmdGetOrders            = "order.list"
	CmdGetOrdersForCustomer = "order.list_for_customer"
	CmdCreateProduct        = "product.create"
	CmdGetProduct           = "product.get"
	CmdGetAllProducts       = "product.list"
	CmdUpdateProduct        = "product.update"
	CmdDeleteProduct        = "product.delete"
	CmdCreateVariation      = "variation.create"
	CmdUpdateVariation      = "variation.update"
	CmdDeleteVariation      = "variation.delete"
	CmdCreateUser           = "user.create"
	CmdGetUserByEmail       = "user.get_by_email"
	CmdAuthenticateUser     = "user.authenticate"
	CmdGetCatalog           = "catalog.get"
	CmdHealthCheck          = "health.check"
)

// OrderItemInput es la línea de pedido tal y como llega en el comando,
// antes de resolver precios contra el catálogo.
type OrderItemInput struct {
	ProductID   uuid.UUID  `json:"product_id"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity"`
}

// ---------- Pedidos ----------

type CreateOrder struct {
	UserID          uuid.UUID
	ConsumeLocation ConsumeLocation
	Items           []OrderItemInput
}

func (CreateOrder) CommandName() string { return CmdCreateOrder }

type CancelOrder struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

func (CancelOrder) CommandName() string { return CmdCancelOrder }

type UpdateOrderStatus struct {
	OrderID uuid.UUID
	Status  OrderStatus
}

func (UpdateOrderStatus) CommandName() string { return CmdUpdateOrderStatus }

type GetOrder struct {
	OrderID uuid.UUID
}

func (GetOrder) CommandName() string { return CmdGetOrder }

type GetOrders struct {
	Page     int
	PageSize int
	Filters  map[string]any
}

func (GetOrders) CommandName() string { return CmdGetOrders }

type GetOrdersForCustomer struct {
	Page     int
	PageSize int
	UserID   uuid.UUID
}

func (GetOrdersForCustomer) CommandName() string { return CmdGetOrdersForCustomer }

// ---------- Catálogo ----------

type VariationInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type CreateProduct struct {
	Name        string
	Description string
	Price       float64
	Variations  []VariationInput
}

func (CreateProduct) CommandName() string { return CmdCreateProduct }

type GetProduct struct {
	ProductID uuid.UUID
}

func (GetProduct) CommandName() string { return CmdGetProduct }

type GetAllProducts struct {
	Page int
}

func (GetAllProducts) CommandName() string { return CmdGetAllProducts }

type UpdateProduct struct {
	ProductID   uuid.UUID
	Name        *string
	Description *string
	Price       *float64
}

func (UpdateProduct) CommandName() string { return CmdUpdateProduct }

type DeleteProduct struct {
	ProductID uuid.UUID
}

func (DeleteProduct) CommandName() string { return CmdDeleteProduct }

type CreateVariation struct {
	ProductID uuid.UUID
	Name      string
	Price     float64
}

func (CreateVariation) CommandName() string { return CmdCreateVariation }

type UpdateVariation struct {
	ProductID   uuid.UUID
	VariationID uuid.UUID
	Name        *string
	Price       *float64
}

func (UpdateVariation) CommandName() string { return CmdUpdateVariation }

type DeleteVariation struct {
	ProductID   uuid.UUID
	VariationID uuid.UUID
}

func (DeleteVariation) CommandName() string { return CmdDeleteVariation }

type GetCatalog struct {
	Page int
}

func (GetCatalog) CommandName() string { return CmdGetCatalog }

// ---------- Usuarios ----------

type CreateUser struct {
	Email    string
	Password string
	Role     Role
}

func (CreateUser) CommandName() string { return CmdCreateUser }

type GetUserByEmail struct {
	Email string
}

func (GetUserByEmail) CommandName() string { return CmdGetUserByEmail }

type AuthenticateUser struct {
	Email    string
	Password string
}

func (AuthenticateUser) CommandName() string { return CmdAuthenticateUser }

// ---------- General ----------

type HealthCheck struct{}

func (HealthCheck) CommandName() string { return CmdHealthCheck }

// CancelOutcome es el resultado no-error de CancelOrder: cancelar un pedido
// ya entregado o ya cancelado no es una violación de invariante, solo un
// "no había nada que hacer".
type CancelOutcome struct {
	Cancelled bool   `json:"cancelled"`
	Reason    string `json:"reason"`
}
