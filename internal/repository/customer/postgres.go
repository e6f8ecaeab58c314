package customer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const customerColumns = `id::text, email, password_hash, full_name, phone, is_admin, created_at`

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO customers (email, password_hash, full_name, phone)
VALUES ($1, $2, $3, $4)
RETURNING `+customerColumns+`
`, c.Email, c.PasswordHash, c.FullName, c.Phone)
	created, err := scanCustomer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.fetch(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.fetch(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (r *postgresRepo) fetch(ctx context.Context, query string, args ...interface{}) (*domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FullName, &c.Phone, &c.Admin, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
