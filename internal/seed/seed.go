package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	Price       string
	Stock       int
}

type couponSeed struct {
	Code         string
	DiscountType string
	Value        string
	MinPurchase  string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:         "SKU-ROSE-RED-12",
			Name:        "Red Roses, dozen",
			Description: "Twelve long-stem red roses, hand tied",
			Price:       "24.99",
			Stock:       40,
		},
		{
			SKU:         "SKU-TULIP-MIX",
			Name:        "Mixed Tulip Bouquet",
			Description: "Seasonal tulips in assorted colors",
			Price:       "18.50",
			Stock:       25,
		},
		{
			SKU:         "SKU-ORCHID-POT",
			Name:        "Potted Orchid",
			Description: "White phalaenopsis orchid in ceramic pot",
			Price:       "32.00",
			Stock:       12,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	coupons := []couponSeed{
		{Code: "WELCOME10", DiscountType: "percentage", Value: "10", MinPurchase: "0"},
		{Code: "SPRING5", DiscountType: "fixed_amount", Value: "5.00", MinPurchase: "20.00"},
	}

	for _, c := range coupons {
		if err := upsertCoupon(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price, stock, active)
VALUES ($1, $2, $3, $4, $5, TRUE)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    stock = EXCLUDED.stock,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.Price, p.Stock)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, c couponSeed) error {
	const q = `
INSERT INTO coupons (code, discount_type, discount_value, min_purchase, active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT ((upper(code))) DO UPDATE
SET discount_type = EXCLUDED.discount_type,
    discount_value = EXCLUDED.discount_value,
    min_purchase = EXCLUDED.min_purchase,
    active = TRUE
`
	_, err := pool.Exec(ctx, q, c.Code, c.DiscountType, c.Value, c.MinPurchase)
	return err
}
