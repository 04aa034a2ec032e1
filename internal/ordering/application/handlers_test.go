package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/davicafu/comanda/tests/mocks"
)

type fixture struct {
	bus       *application.MessageBus
	factory   *mocks.Factory
	notifier  *mocks.FakeNotifier
	transport *mocks.FakePublisher
	analytics *mocks.FakeAnalytics
	views     *mocks.FakeViews
	cache     *mocks.DummyCache
}

func newFixture() *fixture {
	f := &fixture{
		factory:   mocks.NewFactory(),
		notifier:  &mocks.FakeNotifier{},
		transport: &mocks.FakePublisher{},
		analytics: &mocks.FakeAnalytics{},
		views:     mocks.NewFakeViews(),
		cache:     mocks.NewDummyCache(),
	}
	f.bus = application.Bootstrap(application.Deps{
		Factory:   f.factory,
		Notifier:  f.notifier,
		Transport: f.transport,
		Analytics: f.analytics,
		Views:     f.views,
		Cache:     f.cache,
		Hasher:    mocks.FakeHasher{},
		Logger:    zap.NewNop(),
	})
	return f
}

func (f *fixture) mustHandle(t *testing.T, cmd domain.Command) any {
	t.Helper()
	result, err := f.bus.Handle(context.Background(), cmd)
	assert.NoError(t, err)
	return result
}

func (f *fixture) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	return f.mustHandle(t, domain.CreateUser{
		Email:    email,
		Password: "secreto123",
		Role:     domain.RoleCustomer,
	}).(*domain.User)
}

func (f *fixture) createProduct(t *testing.T, name string, price float64) *domain.Product {
	t.Helper()
	return f.mustHandle(t, domain.CreateProduct{
		Name:  name,
		Price: price,
	}).(*domain.Product)
}

func (f *fixture) createOrder(t *testing.T, user *domain.User, items []domain.OrderItemInput) *domain.Order {
	t.Helper()
	return f.mustHandle(t, domain.CreateOrder{
		UserID:          user.ID,
		ConsumeLocation: domain.InHouse,
		Items:           items,
	}).(*domain.Order)
}

// ---------------- Usuarios ----------------

func TestCreateUser_GuardaSoloElHash(t *testing.T) {
	f := newFixture()

	user := f.createUser(t, "ana@example.com")

	assert.Equal(t, "hashed:secreto123", user.Password)
	assert.True(t, f.factory.Last.Committed)

	stored := f.factory.Store.Users[user.ID]
	assert.NotNil(t, stored)
	assert.Equal(t, "hashed:secreto123", stored.Password)
}

func TestAuthenticateUser(t *testing.T) {
	f := newFixture()
	f.createUser(t, "ana@example.com")

	result, err := f.bus.Handle(context.Background(), domain.AuthenticateUser{
		Email:    "ana@example.com",
		Password: "secreto123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "ana@example.com", result.(*domain.User).Email)

	_, err = f.bus.Handle(context.Background(), domain.AuthenticateUser{
		Email:    "ana@example.com",
		Password: "otra",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.bus.Handle(context.Background(), domain.AuthenticateUser{
		Email:    "nadie@example.com",
		Password: "da igual",
	})
	assert.True(t, domain.IsNotFound(err))
}

// ---------------- Pedidos ----------------

func TestCreateOrder_ResuelvePrecios(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "ana@example.com")
	product := f.createProduct(t, "Café", 2.5)

	variation := f.mustHandle(t, domain.CreateVariation{
		ProductID: product.ID,
		Name:      "Doble",
		Price:     1.0,
	}).(*domain.Variation)

	order := f.createOrder(t, user, []domain.OrderItemInput{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: product.ID, VariationID: &variation.ID, Quantity: 1},
	})

	assert.Equal(t, domain.StatusWaiting, order.Status)
	// 2 x 2.5 + 1 x (2.5 + 1.0)
	assert.InDelta(t, 8.5, order.TotalCost, 0.001)
	assert.Len(t, order.Items, 2)
	assert.InDelta(t, 3.5, order.Items[1].UnitPrice, 0.001)
}

func TestCreateOrder_ProductoInexistente(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "ana@example.com")

	_, err := f.bus.Handle(context.Background(), domain.CreateOrder{
		UserID:          user.ID,
		ConsumeLocation: domain.TakeAway,
		Items:           []domain.OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.True(t, domain.IsNotFound(err))
	assert.True(t, f.factory.Last.RolledBack)
	assert.Empty(t, f.notifier.Sent, "sin commit no hay fan-out")
}

func TestCreateOrder_FanOutCompleto(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "ana@example.com")
	product := f.createProduct(t, "Café", 2.5)

	order := f.createOrder(t, user, []domain.OrderItemInput{
		{ProductID: product.ID, Quantity: 1},
	})

	// Email al dueño.
	assert.Len(t, f.notifier.Sent, 1)
	assert.Equal(t, user.Email, f.notifier.Sent[0].Destination)
	created, ok := f.notifier.Sent[0].Event.(domain.OrderCreated)
	assert.True(t, ok)
	assert.Equal(t, order.ID, created.OrderID)

	// Hecho de analítica.
	assert.Len(t, f.analytics.Created, 1)

	// Proyección del read model.
	view := f.views.Views[order.ID]
	assert.NotNil(t, view)
	assert.Equal(t, domain.StatusWaiting, view.Status)
	assert.Equal(t, 1, view.ItemCount)
}

func TestUpdateOrderStatus_TransicionValida(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "ana@example.com")
	product := f.createProduct(t, "Café", 2.5)
	order := f.createOrder(t, user, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}})

	f.notifier.Sent = nil
	f.views.Views = map[uuid.UUID]*domain.OrderView{}

	result := f.mustHandle(t, domain.UpdateOrderStatus{
		OrderID: order.ID,
		Status:  domain.StatusPreparation,
	})

	assert.Equal(t, domain.StatusPreparation, result.(*domain.Order).Status)

	// Publicación al transporte desde el propio command handler.
	assert.Len(t, f.transport.Messages, 1)
	assert.Equal(t, domain.ChannelOrders, f.transport.Messages[0].Channel)
	assert.Equal(t, "OrderStatusUpdated", f.transport.Messages[0].EventName)

	// Fan-out del OrderStatusChanged.
	assert.Len(t, f.notifier.Sent, 1)
	assert.Len(t, f.analytics.StatusChanged, 1)
	assert.Equal(t, domain.StatusPreparation, f.views.Views[order.ID].Status)
}

func TestUpdateOrderStatus_TransicionIlegal(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "ana@example.com")
	product := f.createProduct(t, "Café", 2.5)
	order := f.createOrder(t, user, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}})
	f.notifier.Sent = nil

	_, err := f.bus.Handle(context.Background(), domain.UpdateOrderStatus{
		OrderID: order.ID,
		Status:  domain.StatusDelivered, // Waiting → Delivered no existe
	})

	assert.True(t, domain.IsValidation(err))
	assert.True(t, f.factory.Last.RolledBack)
	assert.Equal(t, domain.StatusWaiting, f.factory.Store.Orders[order.ID].Status)
	assert.Empty(t, f.notifier.Sent)
	assert.Empty(t, f.transport.Messages)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "ana@example.com")
	otro := f.createUser(t, "otro@example.com")
	product := f.createProduct(t, "Café", 2.5)

	t.Run("cancela pedido propio en waiting", func(t *testing.T) {
		order := f.createOrder(t, user, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}})
		f.transport.Messages = nil

		outcome := f.mustHandle(t, domain.CancelOrder{OrderID: order.ID, UserID: user.ID}).(domain.CancelOutcome)

		assert.True(t, outcome.Cancelled)
		assert.Equal(t, domain.StatusCancelled, f.factory.Store.Orders[order.ID].Status)
		assert.Len(t, f.transport.Messages, 1)
		assert.Equal(t, "OrderCancelled", f.transport.Messages[0].EventName)
	})

	t.Run("pedido ajeno es forbidden", func(t *testing.T) {
		order := f.createOrder(t, user, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}})

		_, err := f.bus.Handle(context.Background(), domain.CancelOrder{OrderID: order.ID, UserID: otro.ID})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("pedido entregado devuelve outcome negativo", func(t *testing.T) {
		order := f.createOrder(t, user, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}})
		f.mustHandle(t, domain.UpdateOrderStatus{OrderID: order.ID, Status: domain.StatusPreparation})
		f.mustHandle(t, domain.UpdateOrderStatus{OrderID: order.ID, Status: domain.StatusReady})
		f.mustHandle(t, domain.UpdateOrderStatus{OrderID: order.ID, Status: domain.StatusDelivered})

		outcome := f.mustHandle(t, domain.CancelOrder{OrderID: order.ID, UserID: user.ID}).(domain.CancelOutcome)

		// No es un error: simplemente no había nada que cancelar.
		assert.False(t, outcome.Cancelled)
		assert.Contains(t, outcome.Reason, "delivered")
		assert.Equal(t, domain.StatusDelivered, f.factory.Store.Orders[order.ID].Status)
	})

	t.Run("cancelar dos veces devuelve outcome negativo", func(t *testing.T) {
		order := f.createOrder(t, user, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}})
		f.mustHandle(t, domain.CancelOrder{OrderID: order.ID, UserID: user.ID})

		outcome := f.mustHandle(t, domain.CancelOrder{OrderID: order.ID, UserID: user.ID}).(domain.CancelOutcome)
		assert.False(t, outcome.Cancelled)
		assert.Contains(t, outcome.Reason, "cancelled")
	})
}

func TestGetOrders_FiltraPorUsuario(t *testing.T) {
	f := newFixture()
	ana := f.createUser(t, "ana@example.com")
	luis := f.createUser(t, "luis@example.com")
	product := f.createProduct(t, "Café", 2.5)

	f.createOrder(t, ana, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 1}})
	f.createOrder(t, ana, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 2}})
	f.createOrder(t, luis, []domain.OrderItemInput{{ProductID: product.ID, Quantity: 3}})

	result := f.mustHandle(t, domain.GetOrdersForCustomer{UserID: ana.ID})
	orders := result.([]*domain.Order)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, ana.ID, o.UserID)
	}
}

// ---------------- Catálogo ----------------

func TestCreateVariation_NombreDuplicado(t *testing.T) {
	f := newFixture()
	product := f.createProduct(t, "Café", 2.5)

	f.mustHandle(t, domain.CreateVariation{ProductID: product.ID, Name: "Doble", Price: 1})

	_, err := f.bus.Handle(context.Background(), domain.CreateVariation{
		ProductID: product.ID,
		Name:      "Doble",
		Price:     2,
	})
	assert.True(t, domain.IsValidation(err))
	assert.True(t, f.factory.Last.RolledBack)
}

func TestUpdateProduct_DescuentoYCache(t *testing.T) {
	f := newFixture()
	product := f.createProduct(t, "Café", 10.0)
	newPrice := 4.0

	f.mustHandle(t, domain.UpdateProduct{ProductID: product.ID, Price: &newPrice})

	// 4.0 * 2 < 10.0 → aviso de descuento.
	assert.Len(t, f.transport.Messages, 1)
	assert.Equal(t, "ProductDiscount", f.transport.Messages[0].EventName)
	// Invalidación de la entrada cacheada.
	assert.Contains(t, f.cache.Deleted, domain.CacheKeyProduct(product.ID))
}

func TestDeleteProduct_BorradoLogico(t *testing.T) {
	f := newFixture()
	product := f.createProduct(t, "Café", 2.5)

	f.mustHandle(t, domain.DeleteProduct{ProductID: product.ID})

	_, err := f.bus.Handle(context.Background(), domain.GetProduct{ProductID: product.ID})
	assert.True(t, domain.IsNotFound(err))
}

// ---------------- General ----------------

func TestHealthCheck(t *testing.T) {
	f := newFixture()

	result := f.mustHandle(t, domain.HealthCheck{})
	assert.Equal(t, true, result)

	// El fallo del probe no es un error del comando, es un false.
	f.factory.HealthErr = errors.New("db caída")
	result, err := f.bus.Handle(context.Background(), domain.HealthCheck{})
	assert.NoError(t, err)
	assert.Equal(t, false, result)
}
