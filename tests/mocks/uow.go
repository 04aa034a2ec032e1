// Package mocks provee dobles en memoria del Unit of Work y sus
// repositorios, con la misma semántica de "seen" y drenaje de eventos que
// las implementaciones SQL.
package mocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
)

// Store es el estado compartido entre Unit of Work consecutivos, el
// equivalente a la base de datos.
type Store struct {
	Users      map[uuid.UUID]*domain.User
	Products   map[uuid.UUID]*domain.Product
	Variations map[uuid.UUID]*domain.Variation
	Orders     map[uuid.UUID]*domain.Order
	OrderItems map[uuid.UUID]*domain.OrderItem
}

func NewStore() *Store {
	return &Store{
		Users:      make(map[uuid.UUID]*domain.User),
		Products:   make(map[uuid.UUID]*domain.Product),
		Variations: make(map[uuid.UUID]*domain.Variation),
		Orders:     make(map[uuid.UUID]*domain.Order),
		OrderItems: make(map[uuid.UUID]*domain.OrderItem),
	}
}

// Factory produce un Unit of Work nuevo por comando sobre el mismo Store.
// Guarda el último creado para que el test lo inspeccione.
type Factory struct {
	Store     *Store
	NewCalls  int
	Last      *UnitOfWork
	NewErr    error
	HealthErr error
}

func NewFactory() *Factory {
	return &Factory{Store: NewStore()}
}

func (f *Factory) New(ctx context.Context) (application.UnitOfWork, error) {
	f.NewCalls++
	if f.NewErr != nil {
		return nil, f.NewErr
	}
	uow := &UnitOfWork{
		store:      f.Store,
		users:      &UserRepo{store: f.Store},
		products:   &ProductRepo{store: f.Store},
		variations: &VariationRepo{store: f.Store},
		orders:     &OrderRepo{store: f.Store},
		orderItems: &OrderItemRepo{store: f.Store},
		HealthErr:  f.HealthErr,
	}
	f.Last = uow
	return uow, nil
}

// UnitOfWork simula el scope transaccional. No simula aislamiento real:
// las escrituras van directas al Store y Commit solo marca el flag.
type UnitOfWork struct {
	store      *Store
	users      *UserRepo
	products   *ProductRepo
	variations *VariationRepo
	orders     *OrderRepo
	orderItems *OrderItemRepo

	// PendingEvents permite a un test encolar eventos "sueltos" que el
	// siguiente CollectNewEvents devolverá, útil para probar el fan-out.
	PendingEvents []domain.Event

	Committed  bool
	RolledBack bool
	Closed     bool
	CommitErr  error
	HealthErr  error
}

func (u *UnitOfWork) Users() domain.UserRepository           { return u.users }
func (u *UnitOfWork) Products() domain.ProductRepository     { return u.products }
func (u *UnitOfWork) Variations() domain.VariationRepository { return u.variations }
func (u *UnitOfWork) Orders() domain.OrderRepository         { return u.orders }
func (u *UnitOfWork) OrderItems() domain.OrderItemRepository { return u.orderItems }

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.CommitErr != nil {
		return domain.NewPersistence("commit", u.CommitErr)
	}
	u.Committed = true
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.Committed {
		return nil // no-op tras commit, como sql.ErrTxDone
	}
	u.RolledBack = true
	return nil
}

func (u *UnitOfWork) CollectNewEvents() []domain.Event {
	var out []domain.Event
	out = append(out, u.users.Drain()...)
	out = append(out, u.orders.Drain()...)
	out = append(out, u.products.Drain()...)
	out = append(out, u.PendingEvents...)
	u.PendingEvents = nil
	return out
}

func (u *UnitOfWork) HealthCheck(ctx context.Context) error {
	if u.HealthErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrHealthCheck, u.HealthErr)
	}
	return nil
}

func (u *UnitOfWork) Close() error {
	u.Closed = true
	if !u.Committed {
		u.RolledBack = true
	}
	return nil
}

// ---------------- Repositorios ----------------

type UserRepo struct {
	store *Store
	domain.SeenSet[*domain.User]
}

func (r *UserRepo) Add(ctx context.Context, u *domain.User) error {
	r.store.Users[u.ID] = u
	r.Mark(u)
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.store.Users[id]
	if !ok {
		return nil, nil
	}
	r.Mark(u)
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.store.Users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	r.store.Users[u.ID] = u
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, u *domain.User) error {
	delete(r.store.Users, u.ID)
	r.Forget(u)
	return nil
}

type ProductRepo struct {
	store *Store
	domain.SeenSet[*domain.Product]
}

func (r *ProductRepo) Add(ctx context.Context, p *domain.Product) error {
	r.store.Products[p.ID] = p
	for i := range p.Variations {
		v := p.Variations[i]
		r.store.Variations[v.ID] = &v
	}
	r.Mark(p)
	return nil
}

func (r *ProductRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := r.store.Products[id]
	if !ok || p.IsDeleted {
		return nil, nil
	}
	r.Mark(p)
	return p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	r.store.Products[p.ID] = p
	for i := range p.Variations {
		v := p.Variations[i]
		r.store.Variations[v.ID] = &v
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, p *domain.Product) error {
	p.IsDeleted = true
	r.Forget(p)
	return nil
}

func (r *ProductRepo) GetAll(ctx context.Context, page, pageSize int, filters map[string]any) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.store.Products {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return paginate(out, page, pageSize), nil
}

type VariationRepo struct {
	store *Store
}

func (r *VariationRepo) Add(ctx context.Context, v *domain.Variation) error {
	r.store.Variations[v.ID] = v
	return nil
}

func (r *VariationRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Variation, error) {
	v, ok := r.store.Variations[id]
	if !ok || v.IsDeleted {
		return nil, nil
	}
	return v, nil
}

func (r *VariationRepo) Update(ctx context.Context, v *domain.Variation) error {
	r.store.Variations[v.ID] = v
	return nil
}

func (r *VariationRepo) Delete(ctx context.Context, v *domain.Variation) error {
	v.IsDeleted = true
	return nil
}

type OrderRepo struct {
	store *Store
	domain.SeenSet[*domain.Order]
}

// Add emula al repositorio SQL: persistir un pedido nuevo encola el
// OrderCreated derivado del estado persistido.
func (r *OrderRepo) Add(ctx context.Context, o *domain.Order) error {
	r.store.Orders[o.ID] = o
	o.Record(domain.OrderCreated{
		OrderID:         o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalCost:       o.TotalCost,
		ConsumeLocation: o.ConsumeLocation,
		Items:           o.Items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	})
	r.Mark(o)
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := r.store.Orders[id]
	if !ok {
		return nil, nil
	}
	r.Mark(o)
	return o, nil
}

func (r *OrderRepo) Update(ctx context.Context, o *domain.Order) error {
	r.store.Orders[o.ID] = o
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, o *domain.Order) error {
	delete(r.store.Orders, o.ID)
	r.Forget(o)
	return nil
}

func (r *OrderRepo) GetAll(ctx context.Context, page, pageSize int, filters map[string]any) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.store.Orders {
		if userID, ok := filters["user_id"].(uuid.UUID); ok && o.UserID != userID {
			continue
		}
		if status, ok := filters["status"].(string); ok && string(o.Status) != status {
			continue
		}
		out = append(out, o)
	}
	return paginate(out, page, pageSize), nil
}

type OrderItemRepo struct {
	store *Store
}

func (r *OrderItemRepo) Add(ctx context.Context, it *domain.OrderItem) error {
	r.store.OrderItems[it.ID] = it
	return nil
}

func (r *OrderItemRepo) Get(ctx context.Context, id uuid.UUID) (*domain.OrderItem, error) {
	it, ok := r.store.OrderItems[id]
	if !ok {
		return nil, nil
	}
	return it, nil
}

func (r *OrderItemRepo) Update(ctx context.Context, it *domain.OrderItem) error {
	r.store.OrderItems[it.ID] = it
	return nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Verificación estática.
var _ application.UnitOfWork = (*UnitOfWork)(nil)
var _ application.UnitOfWorkFactory = (*Factory)(nil)
