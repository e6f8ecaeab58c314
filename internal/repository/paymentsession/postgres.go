package paymentsession

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const sessionColumns = `id::text, order_id::text, preference_id, redirect_url, success_url, failure_url, pending_url, superseded, created_at`

func (r *postgresRepo) Create(ctx context.Context, s domain.PaymentSession) (*domain.PaymentSession, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
UPDATE payment_sessions SET superseded = TRUE WHERE order_id = $1 AND NOT superseded
`, s.OrderID); err != nil {
		return nil, err
	}

	var created domain.PaymentSession
	err = tx.QueryRow(ctx, `
INSERT INTO payment_sessions (order_id, preference_id, redirect_url, success_url, failure_url, pending_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+sessionColumns+`
`, s.OrderID, s.PreferenceID, s.RedirectURL, s.SuccessURL, s.FailureURL, s.PendingURL).Scan(
		&created.ID, &created.OrderID, &created.PreferenceID, &created.RedirectURL,
		&created.SuccessURL, &created.FailureURL, &created.PendingURL, &created.Superseded, &created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *postgresRepo) GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.PaymentSession, error) {
	var s domain.PaymentSession
	err := r.pool.QueryRow(ctx, `
SELECT `+sessionColumns+`
FROM payment_sessions
WHERE preference_id = $1
`, preferenceID).Scan(
		&s.ID, &s.OrderID, &s.PreferenceID, &s.RedirectURL,
		&s.SuccessURL, &s.FailureURL, &s.PendingURL, &s.Superseded, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.PaymentSession, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+sessionColumns+`
FROM payment_sessions
WHERE order_id = $1
ORDER BY created_at DESC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.PaymentSession
	for rows.Next() {
		var s domain.PaymentSession
		if err := rows.Scan(
			&s.ID, &s.OrderID, &s.PreferenceID, &s.RedirectURL,
			&s.SuccessURL, &s.FailureURL, &s.PendingURL, &s.Superseded, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
