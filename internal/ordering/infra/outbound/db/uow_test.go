package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
)

// openTestDB abre una SQLite en memoria con nombre único por test. El
// cache compartido hace que todas las conexiones del pool vean la misma
// base; limitamos el pool a una conexión para mantenerla viva.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	pool, err := Open(SQLite, dsn)
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, InitSchema(context.Background(), pool))
	return pool
}

func newTestFactory(t *testing.T) *Factory {
	return NewFactory(openTestDB(t), SQLite, 2*time.Second, zap.NewNop())
}

func addUser(t *testing.T, uow application.UnitOfWork, email string) *domain.User {
	t.Helper()
	user := domain.NewUser(email, "hash", domain.RoleCustomer)
	require.NoError(t, uow.Users().Add(context.Background(), user))
	return user
}

func addOrder(t *testing.T, uow application.UnitOfWork, userID uuid.UUID, total float64) *domain.Order {
	t.Helper()
	orderID := uuid.New()
	now := time.Now().UTC()
	items := []domain.OrderItem{{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: uuid.New(),
		Quantity:  2,
		UnitPrice: total / 2,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	order := domain.NewOrder(orderID, userID, domain.InHouse, items, total)
	require.NoError(t, uow.Orders().Add(context.Background(), order))
	return order
}

func TestUnitOfWork_CommitPersiste(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	user := addUser(t, uow, "ana@example.com")
	order := addOrder(t, uow, user.ID, 5.0)
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Close())

	// Un scope nuevo ve lo comiteado.
	uow2, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow2.Close()

	got, err := uow2.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, domain.StatusWaiting, got.Status)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.InDelta(t, 5.0, got.TotalCost, 0.001)
}

func TestUnitOfWork_CloseSinCommitRevierte(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	user := addUser(t, uow, "fugaz@example.com")
	require.NoError(t, uow.Close()) // sin commit

	uow2, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow2.Close()

	got, err := uow2.Users().Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "lo no comiteado desaparece")
}

func TestUnitOfWork_RollbackTrasCommitEsNoOp(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	addUser(t, uow, "ana@example.com")
	require.NoError(t, uow.Commit(ctx))

	assert.NoError(t, uow.Rollback(ctx))
	assert.NoError(t, uow.Close())
}

func TestUnitOfWork_AddEncolaOrderCreated(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow.Close()

	user := addUser(t, uow, "ana@example.com")
	order := addOrder(t, uow, user.ID, 7.5)

	events := uow.CollectNewEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(domain.OrderCreated)
	require.True(t, ok)
	assert.Equal(t, order.ID, created.OrderID)
	assert.Equal(t, user.ID, created.UserID)

	// El drenaje agota las colas: la segunda recolección es vacía.
	assert.Empty(t, uow.CollectNewEvents())
}

func TestUnitOfWork_DeleteDescartaEventos(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow.Close()

	user := addUser(t, uow, "ana@example.com")
	order := addOrder(t, uow, user.ID, 3.0)

	// Borrar antes de recolectar descarta el OrderCreated pendiente.
	require.NoError(t, uow.Orders().Delete(ctx, order))
	assert.Empty(t, uow.CollectNewEvents())
}

func TestUnitOfWork_LecturaTrasCommit(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow.Close()

	user := addUser(t, uow, "ana@example.com")
	require.NoError(t, uow.Commit(ctx))

	// La transacción ya terminó; la lectura cae al pool en vez de fallar
	// con sql.ErrTxDone. De esto dependen los event handlers.
	got, err := uow.Users().Get(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ana@example.com", got.Email)
}

func TestUnitOfWork_HealthCheck(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow.Close()

	assert.NoError(t, uow.HealthCheck(ctx))
}

func TestOrderRepo_GetAllFiltra(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)
	ana := addUser(t, uow, "ana@example.com")
	luis := addUser(t, uow, "luis@example.com")
	addOrder(t, uow, ana.ID, 1.0)
	addOrder(t, uow, ana.ID, 2.0)
	addOrder(t, uow, luis.ID, 3.0)
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Close())

	uow2, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow2.Close()

	orders, err := uow2.Orders().GetAll(ctx, 1, 10, map[string]any{"user_id": ana.ID})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, ana.ID, o.UserID)
		assert.Len(t, o.Items, 1)
	}

	// Columnas fuera de la whitelist se ignoran.
	all, err := uow2.Orders().GetAll(ctx, 1, 10, map[string]any{"total_cost": 1.0})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductRepo_CicloCompleto(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow, err := factory.New(ctx)
	require.NoError(t, err)

	product := domain.NewProduct("Café", "de especialidad", 2.5)
	now := time.Now().UTC()
	require.NoError(t, product.AddVariation(domain.Variation{
		ID: uuid.New(), ProductID: product.ID, Name: "Doble", Price: 1.0,
		CreatedAt: now, UpdatedAt: now,
	}))
	product.PullEvents() // el alta de catálogo no publica nada

	require.NoError(t, uow.Products().Add(ctx, product))
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Close())

	uow2, err := factory.New(ctx)
	require.NoError(t, err)

	got, err := uow2.Products().Get(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.ActiveVariations(), 1)

	// Borrado lógico: desaparece de las lecturas.
	require.NoError(t, uow2.Products().Delete(ctx, got))
	require.NoError(t, uow2.Commit(ctx))
	require.NoError(t, uow2.Close())

	uow3, err := factory.New(ctx)
	require.NoError(t, err)
	defer uow3.Close()

	gone, err := uow3.Products().Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
