package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation of UserRepository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
	SELECT u.id, u.email, u.alias, u.password_hash, u.created_at,
	       EXISTS (SELECT 1 FROM admins a WHERE a.user_id = u.id) AS admin
	FROM users u
	WHERE u.id = $1
	`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
	SELECT u.id, u.email, u.alias, u.password_hash, u.created_at,
	       EXISTS (SELECT 1 FROM admins a WHERE a.user_id = u.id) AS admin
	FROM users u
	WHERE u.email = $1
	`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) IsAdmin(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1)`
	var admin bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&admin); err != nil {
		return false, classifyStoreError(err)
	}
	return admin, nil
}

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Alias,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.Admin,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, classifyStoreError(err)
	}
	return &user, nil
}
