package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/google/uuid"
)

// OrderItemRepo accede a líneas de pedido sueltas. Normalmente las líneas
// se persisten vía OrderRepo; este repositorio cubre lecturas puntuales y
// correcciones administrativas.
type OrderItemRepo struct {
	sess *session
	d    Dialect
}

func newOrderItemRepo(sess *session, d Dialect) *OrderItemRepo {
	return &OrderItemRepo{sess: sess, d: d}
}

func (r *OrderItemRepo) Add(ctx context.Context, it *domain.OrderItem) error {
	return insertOrderItem(ctx, r.sess, r.d, it)
}

func (r *OrderItemRepo) Get(ctx context.Context, id uuid.UUID) (*domain.OrderItem, error) {
	row := r.sess.QueryRowContext(ctx, r.d.rebind(
		`SELECT id, order_id, product_id, variation_id, quantity, unit_price, created_at, updated_at
		 FROM order_items WHERE id = ?`), id)

	var it domain.OrderItem
	var variationID uuid.NullUUID
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &variationID, &it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewPersistence("order_item.get", err)
	}
	if variationID.Valid {
		v := variationID.UUID
		it.VariationID = &v
	}
	return &it, nil
}

func (r *OrderItemRepo) Update(ctx context.Context, it *domain.OrderItem) error {
	var variationID uuid.NullUUID
	if it.VariationID != nil {
		variationID = uuid.NullUUID{UUID: *it.VariationID, Valid: true}
	}
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`UPDATE order_items SET quantity = ?, unit_price = ?, variation_id = ?, updated_at = ? WHERE id = ?`),
		it.Quantity, it.UnitPrice, variationID, it.UpdatedAt, it.ID,
	)
	if err != nil {
		return domain.NewPersistence("order_item.update", err)
	}
	return nil
}

var _ domain.OrderItemRepository = (*OrderItemRepo)(nil)
