package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/google/uuid"
)

// UserRepo persiste usuarios a través de la sesión del scope.
type UserRepo struct {
	sess *session
	d    Dialect
	seen domain.SeenSet[*domain.User]
}

func newUserRepo(sess *session, d Dialect) *UserRepo {
	return &UserRepo{sess: sess, d: d}
}

func (r *UserRepo) Add(ctx context.Context, u *domain.User) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`INSERT INTO users (id, email, password, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.Password, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return domain.NewPersistence("user.add", err)
	}
	r.seen.Mark(u)
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := r.scanOne(ctx, `SELECT id, email, password, role, created_at, updated_at FROM users WHERE id = ?`, id)
	if err != nil || u == nil {
		return u, err
	}
	r.seen.Mark(u)
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(ctx, `SELECT id, email, password, role, created_at, updated_at FROM users WHERE email = ?`, email)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := r.sess.QueryRowContext(ctx, r.d.rebind(query), arg)

	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // la ausencia no es un error
		}
		return nil, domain.NewPersistence("user.get", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(
		`UPDATE users SET email = ?, password = ?, role = ?, updated_at = ? WHERE id = ?`),
		u.Email, u.Password, string(u.Role), u.UpdatedAt, u.ID,
	)
	if err != nil {
		return domain.NewPersistence("user.update", err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, u *domain.User) error {
	_, err := r.sess.ExecContext(ctx, r.d.rebind(`DELETE FROM users WHERE id = ?`), u.ID)
	if err != nil {
		return domain.NewPersistence("user.delete", err)
	}
	r.seen.Forget(u)
	return nil
}

func (r *UserRepo) Drain() []domain.Event { return r.seen.Drain() }

var _ domain.UserRepository = (*UserRepo)(nil)
