package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
	"go.uber.org/zap"
)

// Factory abre un Unit of Work por comando: una transacción propia y un
// juego de repositorios frescos ligados a ella.
type Factory struct {
	db            *sql.DB
	dialect       Dialect
	healthTimeout time.Duration
	log           *zap.Logger
}

// NewFactory crea la factoría sobre un pool ya abierto.
func NewFactory(pool *sql.DB, dialect Dialect, healthTimeout time.Duration, log *zap.Logger) *Factory {
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}
	return &Factory{db: pool, dialect: dialect, healthTimeout: healthTimeout, log: log}
}

// New abre la transacción y construye los repositorios del scope.
func (f *Factory) New(ctx context.Context) (application.UnitOfWork, error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewPersistence("begin", err)
	}
	sess := &session{tx: tx, pool: f.db}
	return &UnitOfWork{
		sess:          sess,
		users:         newUserRepo(sess, f.dialect),
		products:      newProductRepo(sess, f.dialect),
		variations:    newVariationRepo(sess, f.dialect),
		orders:        newOrderRepo(sess, f.dialect),
		orderItems:    newOrderItemRepo(sess, f.dialect),
		healthTimeout: f.healthTimeout,
		log:           f.log,
	}, nil
}

// runner es lo común entre *sql.Tx y *sql.DB que usan los repositorios.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// session enruta las queries del scope. Mientras la transacción sigue viva
// todo pasa por ella; una vez resuelta (commit o rollback) las queries caen
// al pool. El bus invoca los event handlers sobre este mismo Unit of Work
// DESPUÉS del commit del comando, así que sus lecturas (p. ej. buscar el
// email del dueño del pedido) deben seguir funcionando.
type session struct {
	tx      *sql.Tx
	pool    *sql.DB
	settled bool
}

func (s *session) runner() runner {
	if s.settled {
		return s.pool
	}
	return s.tx
}

func (s *session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.runner().ExecContext(ctx, query, args...)
}

func (s *session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.runner().QueryContext(ctx, query, args...)
}

func (s *session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.runner().QueryRowContext(ctx, query, args...)
}

// UnitOfWork es el scope transaccional sobre *sql.Tx. No es seguro para
// uso concurrente: cada llamada a Handle recibe el suyo.
type UnitOfWork struct {
	sess          *session
	users         *UserRepo
	products      *ProductRepo
	variations    *VariationRepo
	orders        *OrderRepo
	orderItems    *OrderItemRepo
	healthTimeout time.Duration
	log           *zap.Logger
}

func (u *UnitOfWork) Users() domain.UserRepository           { return u.users }
func (u *UnitOfWork) Products() domain.ProductRepository     { return u.products }
func (u *UnitOfWork) Variations() domain.VariationRepository { return u.variations }
func (u *UnitOfWork) Orders() domain.OrderRepository         { return u.orders }
func (u *UnitOfWork) OrderItems() domain.OrderItemRepository { return u.orderItems }

// Commit confirma la transacción. El fallo del almacenamiento se envuelve
// en PersistenceError y lo propaga el bus como fallo del comando.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := u.sess.tx.Commit(); err != nil {
		return domain.NewPersistence("commit", err)
	}
	u.sess.settled = true
	return nil
}

// Rollback revierte la transacción. Tras un Commit correcto es un no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	err := u.sess.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		u.sess.settled = true
		return nil
	}
	if err != nil {
		return domain.NewPersistence("rollback", err)
	}
	u.sess.settled = true
	return nil
}

// CollectNewEvents drena los repositorios portadores de eventos en orden
// fijo: users → orders → products. Cada drenado vacía las colas, así que
// una segunda llamada consecutiva devuelve vacío.
func (u *UnitOfWork) CollectNewEvents() []domain.Event {
	var out []domain.Event
	out = append(out, u.users.Drain()...)
	out = append(out, u.orders.Drain()...)
	out = append(out, u.products.Drain()...)
	return out
}

// HealthCheck hace un SELECT 1 con timeout explícito. Timeout o fallo se
// devuelven envueltos en ErrHealthCheck; aquí no se traga nada.
func (u *UnitOfWork) HealthCheck(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, u.healthTimeout)
	defer cancel()

	var one int
	if err := u.sess.QueryRowContext(probeCtx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrHealthCheck, err)
	}
	return nil
}

// Close garantiza que la sesión no queda abierta: si nadie comiteó,
// revierte lo pendiente.
func (u *UnitOfWork) Close() error {
	if u.sess.settled {
		return nil
	}
	if err := u.sess.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.log.Warn("⚠️ rollback on close failed", zap.Error(err))
		return err
	}
	u.sess.settled = true
	return nil
}

// Verificación estática.
var _ application.UnitOfWork = (*UnitOfWork)(nil)
var _ application.UnitOfWorkFactory = (*Factory)(nil)
