package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id::text, customer_id::text, status, payment_status, total::text, coupon_code, discount_amount::text,
full_name, email, phone, address, apartment, city, state, postal_code, country,
delivery_type, delivery_date, delivery_time_slot,
tracking_number, estimated_delivery, shipped_at, delivered_at,
preference_id, payment_id, cancellation_reason, notes, created_at, updated_at`

func (r *postgresRepo) CreateFromCart(ctx context.Context, o domain.Order, cartID string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var orderID string
	err = tx.QueryRow(ctx, `
INSERT INTO orders (customer_id, status, payment_status, total, coupon_code, discount_amount,
	full_name, email, phone, address, apartment, city, state, postal_code, country,
	delivery_type, delivery_date, delivery_time_slot, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
RETURNING id::text
`,
		o.CustomerID, string(o.Status), string(o.PaymentStatus), o.Total.StringFixed(2), o.CouponCode, o.DiscountAmount.StringFixed(2),
		o.Shipping.FullName, o.Shipping.Email, o.Shipping.Phone, o.Shipping.Address, o.Shipping.Apartment,
		o.Shipping.City, o.Shipping.State, o.Shipping.PostalCode, o.Shipping.Country,
		o.DeliveryType, o.DeliveryDate, o.DeliveryTimeSlot, o.Notes,
	).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		cmd, err := tx.Exec(ctx, `
UPDATE products
SET stock = stock - $1, updated_at = now()
WHERE id = $2 AND stock >= $1
`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			var available int
			if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, item.ProductID).Scan(&available); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, domain.ErrNotFound
				}
				return nil, err
			}
			return nil, &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: available,
			}
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
VALUES ($1, $2, $3, $4, $5)
`, orderID, item.ProductID, item.ProductName, item.UnitPrice.StringFixed(2), item.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
UPDATE carts SET state = 'ordered', coupon_code = '', updated_at = now() WHERE id = $1
`, cartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1
`, id)
}

func (r *postgresRepo) GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE preference_id = $1
`, preferenceID)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.fetchOrders(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`, customerID)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.fetchOrders(ctx, `
SELECT `+orderColumns+`
FROM orders
ORDER BY created_at DESC
`)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $2,
	payment_status = COALESCE($3, payment_status),
	payment_id = COALESCE($4, payment_id),
	cancellation_reason = COALESCE($5, cancellation_reason),
	tracking_number = COALESCE($6, tracking_number),
	estimated_delivery = COALESCE($7, estimated_delivery),
	shipped_at = COALESCE($8, shipped_at),
	delivered_at = COALESCE($9, delivered_at),
	updated_at = now()
WHERE id = $1
`,
		id,
		string(update.Status),
		paymentStatusArg(update.PaymentStatus),
		update.PaymentID,
		update.CancellationReason,
		update.TrackingNumber,
		update.EstimatedDelivery,
		update.ShippedAt,
		update.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, paymentID string) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET payment_status = $2,
	payment_id = CASE WHEN $3 = '' THEN payment_id ELSE $3 END,
	updated_at = now()
WHERE id = $1
`, id, string(status), paymentID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) SetPreferenceID(ctx context.Context, id, preferenceID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders SET preference_id = $2, updated_at = now() WHERE id = $1
`, id, preferenceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func paymentStatusArg(status *domain.PaymentStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func (r *postgresRepo) fetchOrder(ctx context.Context, query string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) fetchOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, unit_price::text, quantity
FROM order_items
WHERE order_id = $1
`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &price, &item.Quantity); err != nil {
			return err
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status, paymentStatus string
	var total, discount string
	if err := row.Scan(
		&o.ID, &o.CustomerID, &status, &paymentStatus, &total, &o.CouponCode, &discount,
		&o.Shipping.FullName, &o.Shipping.Email, &o.Shipping.Phone, &o.Shipping.Address, &o.Shipping.Apartment,
		&o.Shipping.City, &o.Shipping.State, &o.Shipping.PostalCode, &o.Shipping.Country,
		&o.DeliveryType, &o.DeliveryDate, &o.DeliveryTimeSlot,
		&o.TrackingNumber, &o.EstimatedDelivery, &o.ShippedAt, &o.DeliveredAt,
		&o.PreferenceID, &o.PaymentID, &o.CancellationReason, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)

	var err error
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if o.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
		return nil, err
	}
	return &o, nil
}
