package application

import (
	"context"

	"github.com/davicafu/comanda/internal/ordering/domain"
)

// UnitOfWork es el límite transaccional de un comando: agrupa los
// repositorios ligados a una misma sesión y recolecta los eventos que los
// agregados tocados fueron encolando.
//
// Contrato:
//   - Una instancia por llamada a Handle; nunca se comparte entre llamadas
//     concurrentes ni se reutiliza entre scopes.
//   - Commit es explícito (lo hace el command handler); la salida normal
//     del scope no comitea nada.
//   - Close cierra la sesión; si no hubo Commit, revierte lo pendiente.
type UnitOfWork interface {
	Users() domain.UserRepository
	Products() domain.ProductRepository
	Variations() domain.VariationRepository
	Orders() domain.OrderRepository
	OrderItems() domain.OrderItemRepository

	// Commit persiste la transacción. Un fallo del almacenamiento se
	// devuelve envuelto en PersistenceError.
	Commit(ctx context.Context) error

	// Rollback revierte la transacción. Tras un Commit correcto es un no-op.
	Rollback(ctx context.Context) error

	// CollectNewEvents drena las colas de eventos de todos los agregados
	// vistos, en orden fijo users → orders → products y, dentro de cada
	// repositorio, en orden de inserción. Cada evento se entrega exactamente
	// una vez: una segunda llamada consecutiva devuelve vacío.
	CollectNewEvents() []domain.Event

	// HealthCheck hace un round-trip trivial contra el almacenamiento con
	// timeout explícito. Falla con ErrHealthCheck (timeout incluido).
	HealthCheck(ctx context.Context) error

	// Close libera la sesión. Siempre debe llamarse al salir del scope.
	Close() error
}

// UnitOfWorkFactory abre un scope nuevo con sesión y repositorios frescos.
type UnitOfWorkFactory interface {
	New(ctx context.Context) (UnitOfWork, error)
}
