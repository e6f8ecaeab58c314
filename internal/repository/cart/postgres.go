package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, customer_id::text, coupon_code, created_at, updated_at`

func (r *postgresRepo) GetOrCreateActive(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := r.fetchCart(ctx, `
SELECT `+cartColumns+`
FROM carts
WHERE customer_id = $1 AND state = 'active'
ORDER BY created_at DESC
LIMIT 1
`, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return r.fetchCart(ctx, `
INSERT INTO carts (customer_id)
VALUES ($1)
RETURNING `+cartColumns+`
`, customerID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `
SELECT `+cartColumns+`
FROM carts
WHERE id = $1
`, id)
}

func (r *postgresRepo) AddItem(ctx context.Context, cartID string, product domain.Product, quantity int) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, product_name, unit_price, quantity)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (cart_id, product_id) DO UPDATE SET
	quantity = cart_items.quantity + EXCLUDED.quantity
`, cartID, product.ID, product.Name, product.Price.StringFixed(2), quantity)
	if err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_items
SET quantity = $1
WHERE id = $2 AND cart_id = $3
`, quantity, itemID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_items
WHERE id = $1 AND cart_id = $2
`, itemID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
UPDATE carts SET coupon_code = '', updated_at = now() WHERE id = $1
`, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetCoupon(ctx context.Context, cartID, code string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts SET coupon_code = $1, updated_at = now() WHERE id = $2
`, code, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func (r *postgresRepo) fetchCart(ctx context.Context, query string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&cart.ID,
		&cart.CustomerID,
		&cart.CouponCode,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, cart_id::text, product_id::text, product_name, unit_price::text, quantity, added_at
FROM cart_items
WHERE cart_id = $1
ORDER BY added_at ASC
`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		var price string
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&price,
			&item.Quantity,
			&item.AddedAt,
		); err != nil {
			return nil, err
		}
		item.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}
