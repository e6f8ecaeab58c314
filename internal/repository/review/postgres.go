package review

import (
	"context"
	"errors"

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

func (r *postgresRepo) Create(ctx context.Context, in domain.Review) (*domain.Review, error) {
	var created domain.Review
	err := r.pool.QueryRow(ctx, `
INSERT INTO product_reviews (product_id, customer_id, rating, title, comment)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, product_id::text, customer_id::text, rating, title, comment, approved, created_at
`, in.ProductID, in.CustomerID, in.Rating, in.Title, in.Comment).Scan(
		&created.ID, &created.ProductID, &created.CustomerID,
		&created.Rating, &created.Title, &created.Comment, &created.Approved, &created.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, customer_id::text, rating, title, comment, approved, created_at
FROM product_reviews
WHERE product_id = $1 AND approved
ORDER BY created_at DESC
`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID, &rev.ProductID, &rev.CustomerID,
			&rev.Rating, &rev.Title, &rev.Comment, &rev.Approved, &rev.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
