package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/google/uuid"
)

// VariationRepo accede a variaciones sueltas; lo usa el cálculo de precios
// de CreateOrder. No porta eventos: la variación vive dentro de Product.
type VariationRepo struct {
	sess *session
	d    Dialect
}

func newVariationRepo(sess *session, d Dialect) *VariationRepo {
	return &VariationRepo{sess: sess, d: d}
}

func (r *VariationRepo) Add(ctx context.Context, v *domain.Variation) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`INSERT INTO variations (id, product_id, name, price, is_deleted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.ProductID, v.Name, v.Price, v.IsDeleted, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return domain.NewPersistence("variation.add", err)
	}
	return nil
}

func (r *VariationRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Variation, error) {
	row := r.sess.QueryRowContext(ctx, r.d.rebind(
		`SELECT id, product_id, name, price, is_deleted, created_at, updated_at
		 FROM variations WHERE id = ? AND is_deleted = ?`), id, false)

	var v domain.Variation
	if err := row.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.IsDeleted, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewPersistence("variation.get", err)
	}
	return &v, nil
}

func (r *VariationRepo) Update(ctx context.Context, v *domain.Variation) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`UPDATE variations SET name = ?, price = ?, is_deleted = ?, updated_at = ? WHERE id = ?`),
		v.Name, v.Price, v.IsDeleted, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return domain.NewPersistence("variation.update", err)
	}
	return nil
}

func (r *VariationRepo) Delete(ctx context.Context, v *domain.Variation) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`UPDATE variations SET is_deleted = ?, updated_at = ? WHERE id = ?`),
		true, time.Now().UTC(), v.ID,
	)
	if err != nil {
		return domain.NewPersistence("variation.delete", err)
	}
	v.IsDeleted = true
	return nil
}

var _ domain.VariationRepository = (*VariationRepo)(nil)
