package coupon

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

const couponColumns = `id::text, code, description, discount_type, discount_value::text, min_purchase::text, max_discount::text, valid_from, valid_until, max_uses, current_uses, active, created_at`

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+couponColumns+`
FROM coupons
WHERE upper(code) = upper($1)
`, code)
	return scanCoupon(row)
}

func (r *postgresRepo) ReserveUse(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE coupons
SET current_uses = current_uses + 1
WHERE id = $1 AND (max_uses IS NULL OR current_uses < max_uses)
`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ReleaseUse(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE coupons
SET current_uses = GREATEST(current_uses - 1, 0)
WHERE id = $1
`, id)
	return err
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Coupon) (*domain.Coupon, error) {
	var maxDiscount *string
	if c.MaxDiscount != nil {
		v := c.MaxDiscount.StringFixed(2)
		maxDiscount = &v
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO coupons (code, description, discount_type, discount_value, min_purchase, max_discount, valid_from, valid_until, max_uses, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT ((upper(code))) DO UPDATE SET
	description = EXCLUDED.description,
	discount_type = EXCLUDED.discount_type,
	discount_value = EXCLUDED.discount_value,
	min_purchase = EXCLUDED.min_purchase,
	max_discount = EXCLUDED.max_discount,
	valid_from = EXCLUDED.valid_from,
	valid_until = EXCLUDED.valid_until,
	max_uses = EXCLUDED.max_uses,
	active = EXCLUDED.active
RETURNING `+couponColumns+`
`, c.Code, c.Description, string(c.DiscountType), c.DiscountValue.StringFixed(2), c.MinPurchase.StringFixed(2), maxDiscount, c.ValidFrom, c.ValidUntil, c.MaxUses, c.Active)
	return scanCoupon(row)
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	var discountType string
	var discountValue, minPurchase string
	var maxDiscount *string
	if err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&discountType,
		&discountValue,
		&minPurchase,
		&maxDiscount,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.MaxUses,
		&c.CurrentUses,
		&c.Active,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.DiscountType = domain.DiscountType(discountType)

	var err error
	if c.DiscountValue, err = decimal.NewFromString(discountValue); err != nil {
		return nil, err
	}
	if c.MinPurchase, err = decimal.NewFromString(minPurchase); err != nil {
		return nil, err
	}
	if maxDiscount != nil {
		parsed, err := decimal.NewFromString(*maxDiscount)
		if err != nil {
			return nil, err
		}
		c.MaxDiscount = &parsed
	}
	return &c, nil
}
