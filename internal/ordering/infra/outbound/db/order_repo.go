package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/google/uuid"
)

var orderFilterColumns = map[string]bool{
	"user_id": true,
	"status":  true,
}

// OrderRepo persiste pedidos con sus líneas. Add encola el OrderCreated:
// es la asimetría deliberada del modelo, la creación se notifica desde el
// repositorio y no desde un método de negocio del agregado.
type OrderRepo struct {
	sess *session
	d    Dialect
	seen domain.SeenSet[*domain.Order]
}

func newOrderRepo(sess *session, d Dialect) *OrderRepo {
	return &OrderRepo{sess: sess, d: d}
}

func (r *OrderRepo) Add(ctx context.Context, o *domain.Order) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`INSERT INTO orders (id, user_id, consume_location, status, total_cost, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.UserID, string(o.ConsumeLocation), string(o.Status), o.TotalCost, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return domain.NewPersistence("order.add", err)
	}
	for _, it := range o.Items {
		if err := insertOrderItem(ctx, r.sess, r.d, &it); err != nil {
			return err
		}
	}

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
	r.seen.Mark(o)
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.sess.QueryRowContext(ctx, r.d.rebind(
		`SELECT id, user_id, consume_location, status, total_cost, created_at, updated_at
		 FROM orders WHERE id = ?`), id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewPersistence("order.get", err)
	}

	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return nil, err
	}
	r.seen.Mark(o)
	return o, nil
}

func (r *OrderRepo) GetAll(ctx context.Context, page, pageSize int, filters map[string]any) ([]*domain.Order, error) {
	where, args := buildFilters(filters, orderFilterColumns)
	query := `SELECT id, user_id, consume_location, status, total_cost, created_at, updated_at
		 FROM orders WHERE 1=1` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, pageOffset(page, pageSize))

	rows, err := r.sess.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, domain.NewPersistence("order.get_all", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.NewPersistence("order.get_all", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistence("order.get_all", err)
	}
	// Cerrar antes de lanzar más queries sobre la misma transacción.
	rows.Close()

	for _, o := range orders {
		if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
			return nil, err
		}
		r.seen.Mark(o)
	}
	return orders, nil
}

func (r *OrderRepo) Update(ctx context.Context, o *domain.Order) error {
	// Las líneas son inmutables tras la creación; solo muta la cabecera.
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`UPDATE orders SET status = ?, total_cost = ?, updated_at = ? WHERE id = ?`),
		string(o.Status), o.TotalCost, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return domain.NewPersistence("order.update", err)
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, o *domain.Order) error {
	if _, err := r.sess.ExecContext(ctx, r.d.rebind(`DELETE FROM order_items WHERE order_id = ?`), o.ID); err != nil {
		return domain.NewPersistence("order.delete", err)
	}
	if _, err := r.sess.ExecContext(ctx, r.d.rebind(`DELETE FROM orders WHERE id = ?`), o.ID); err != nil {
		return domain.NewPersistence("order.delete", err)
	}
	r.seen.Forget(o)
	return nil
}

func (r *OrderRepo) Drain() []domain.Event { return r.seen.Drain() }

func (r *OrderRepo) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.sess.QueryContext(ctx, r.d.rebind(
		`SELECT id, order_id, product_id, variation_id, quantity, unit_price, created_at, updated_at
		 FROM order_items WHERE order_id = ? ORDER BY created_at`), orderID)
	if err != nil {
		return nil, domain.NewPersistence("order.items", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		var variationID uuid.NullUUID
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &variationID, &it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, domain.NewPersistence("order.items", err)
		}
		if variationID.Valid {
			v := variationID.UUID
			it.VariationID = &v
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var location, status string
	if err := row.Scan(&o.ID, &o.UserID, &location, &status, &o.TotalCost, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.ConsumeLocation = domain.ConsumeLocation(location)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func insertOrderItem(ctx context.Context, sess *session, d Dialect, it *domain.OrderItem) error {
	var variationID uuid.NullUUID
	if it.VariationID != nil {
		variationID = uuid.NullUUID{UUID: *it.VariationID, Valid: true}
	}
	_, err := sess.ExecContext(ctx, d.rebind(
		`INSERT INTO order_items (id, order_id, product_id, variation_id, quantity, unit_price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		it.ID, it.OrderID, it.ProductID, variationID, it.Quantity, it.UnitPrice, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return domain.NewPersistence("order_item.add", err)
	}
	return nil
}

var _ domain.OrderRepository = (*OrderRepo)(nil)
