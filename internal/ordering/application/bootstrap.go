package application

import (
	"github.com/davicafu/comanda/internal/ordering/domain"
	"go.uber.org/zap"
)

// Deps son los colaboradores externos que consumen los handlers. Los campos
// opcionales pueden quedar a nil y el handler correspondiente se convierte
// en no-op (analítica, read model, cache).
type Deps struct {
	Factory   UnitOfWorkFactory
	Notifier  domain.Notifier
	Transport domain.TransportPublisher
	Analytics domain.OrderAnalytics
	Views     domain.OrderViews
	Cache     domain.CatalogCache
	Hasher    domain.PasswordHasher
	Logger    *zap.Logger
}

// Bootstrap construye el bus con la tabla estática de handlers: un handler
// por comando, lista ordenada por evento. Se llama una vez al arrancar el
// proceso.
func Bootstrap(deps Deps) *MessageBus {
	h := &Handlers{
		notifier:  deps.Notifier,
		transport: deps.Transport,
		analytics: deps.Analytics,
		views:     deps.Views,
		cache:     deps.Cache,
		hasher:    deps.Hasher,
		log:       deps.Logger,
	}

	bus := NewMessageBus(deps.Factory, deps.Logger)

	// ---------------- Comandos ----------------
	RegisterCommandFor(bus, h.CreateOrder)
	RegisterCommandFor(bus, h.CancelOrder)
	RegisterCommandFor(bus, h.UpdateOrderStatus)
	RegisterCommandFor(bus, h.GetOrder)
	RegisterCommandFor(bus, h.GetOrders)
	RegisterCommandFor(bus, h.GetOrdersForCustomer)
	RegisterCommandFor(bus, h.CreateProduct)
	RegisterCommandFor(bus, h.GetProduct)
	RegisterCommandFor(bus, h.GetAllProducts)
	RegisterCommandFor(bus, h.UpdateProduct)
	RegisterCommandFor(bus, h.DeleteProduct)
	RegisterCommandFor(bus, h.CreateVariation)
	RegisterCommandFor(bus, h.UpdateVariation)
	RegisterCommandFor(bus, h.DeleteVariation)
	RegisterCommandFor(bus, h.CreateUser)
	RegisterCommandFor(bus, h.GetUserByEmail)
	RegisterCommandFor(bus, h.AuthenticateUser)
	RegisterCommandFor(bus, h.GetCatalog)
	RegisterCommandFor(bus, h.HealthCheckCmd)

	// ---------------- Eventos ----------------
	// El orden de registro es el orden de invocación por evento.
	RegisterEventFor(bus, h.SendOrderCreatedEmail)
	RegisterEventFor(bus, h.RecordOrderCreatedAnalytics)
	RegisterEventFor(bus, h.ProjectOrderCreatedView)

	RegisterEventFor(bus, h.SendOrderStatusEmail)
	RegisterEventFor(bus, h.PushOrderStatusNotification)
	RegisterEventFor(bus, h.RecordOrderStatusAnalytics)
	RegisterEventFor(bus, h.ProjectOrderStatusView)

	// variation.added / variation.deleted quedan sin handlers a propósito.

	return bus
}
