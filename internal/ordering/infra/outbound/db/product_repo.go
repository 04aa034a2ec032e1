package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/google/uuid"
)

var productFilterColumns = map[string]bool{
	"name": true,
}

// ProductRepo persiste productos y sus variaciones embebidas. El borrado
// es lógico (is_deleted), igual que el de las variaciones.
type ProductRepo struct {
	sess *session
	d    Dialect
	seen domain.SeenSet[*domain.Product]
}

func newProductRepo(sess *session, d Dialect) *ProductRepo {
	return &ProductRepo{sess: sess, d: d}
}

func (r *ProductRepo) Add(ctx context.Context, p *domain.Product) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`INSERT INTO products (id, name, description, price, is_deleted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Description, p.Price, p.IsDeleted, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return domain.NewPersistence("product.add", err)
	}
	for i := range p.Variations {
		if err := r.upsertVariation(ctx, &p.Variations[i]); err != nil {
			return err
		}
	}
	r.seen.Mark(p)
	return nil
}

func (r *ProductRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := r.sess.QueryRowContext(ctx, r.d.rebind(
		`SELECT id, name, description, price, is_deleted, created_at, updated_at
		 FROM products WHERE id = ? AND is_deleted = ?`), id, false)

	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewPersistence("product.get", err)
	}

	variations, err := r.loadVariations(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variations = variations
	r.seen.Mark(&p)
	return &p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`UPDATE products SET name = ?, description = ?, price = ?, is_deleted = ?, updated_at = ? WHERE id = ?`),
		p.Name, p.Description, p.Price, p.IsDeleted, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return domain.NewPersistence("product.update", err)
	}
	// Las variaciones cascadas con el producto, como haría un ORM.
	for i := range p.Variations {
		if err := r.upsertVariation(ctx, &p.Variations[i]); err != nil {
			return err
		}
	}
	return nil
}

// Delete hace borrado lógico y retira el producto del conjunto seen.
func (r *ProductRepo) Delete(ctx context.Context, p *domain.Product) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`UPDATE products SET is_deleted = ?, updated_at = ? WHERE id = ?`),
		true, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return domain.NewPersistence("product.delete", err)
	}
	p.IsDeleted = true
	r.seen.Forget(p)
	return nil
}

func (r *ProductRepo) GetAll(ctx context.Context, page, pageSize int, filters map[string]any) ([]*domain.Product, error) {
	where, args := buildFilters(filters, productFilterColumns)
	query := `SELECT id, name, description, price, is_deleted, created_at, updated_at
		 FROM products WHERE is_deleted = ?` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	allArgs := append([]any{false}, args...)
	allArgs = append(allArgs, pageSize, pageOffset(page, pageSize))

	rows, err := r.sess.QueryContext(ctx, r.d.rebind(query), allArgs...)
	if err != nil {
		return nil, domain.NewPersistence("product.get_all", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.NewPersistence("product.get_all", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistence("product.get_all", err)
	}
	rows.Close()

	for _, p := range products {
		if p.Variations, err = r.loadVariations(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *ProductRepo) Drain() []domain.Event { return r.seen.Drain() }

func (r *ProductRepo) loadVariations(ctx context.Context, productID uuid.UUID) ([]domain.Variation, error) {
	rows, err := r.sess.QueryContext(ctx, r.d.rebind(
		`SELECT id, product_id, name, price, is_deleted, created_at, updated_at
		 FROM variations WHERE product_id = ? ORDER BY created_at`), productID)
	if err != nil {
		return nil, domain.NewPersistence("product.variations", err)
	}
	defer rows.Close()

	var variations []domain.Variation
	for rows.Next() {
		var v domain.Variation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.IsDeleted, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, domain.NewPersistence("product.variations", err)
		}
		variations = append(variations, v)
	}
	return variations, rows.Err()
}

func (r *ProductRepo) upsertVariation(ctx context.Context, v *domain.Variation) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`INSERT INTO variations (id, product_id, name, price, is_deleted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at`),
		v.ID, v.ProductID, v.Name, v.Price, v.IsDeleted, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return domain.NewPersistence("variation.upsert", err)
	}
	return nil
}

var _ domain.ProductRepository = (*ProductRepo)(nil)
