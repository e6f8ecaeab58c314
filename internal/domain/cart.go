package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds a customer's line items plus the coupon applied to the current
// checkout session, if any. The total is never stored; it is recomputed from
// the items every time it is needed.
type Cart struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customerId"`
	CouponCode string     `json:"couponCode,omitempty"`
	Items      []CartItem `json:"items"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID          string          `json:"id"`
	CartID      string          `json:"cartId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	AddedAt     time.Time       `json:"addedAt"`
}

// Subtotal is unit price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total recomputes the cart total from its items.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemFor returns the line holding the given product, if present.
func (c Cart) ItemFor(productID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// AppliedDiscount is the ephemeral per-checkout-session record of a
// validated coupon. It lives on the cart and is cleared on coupon removal
// or on order finalization.
type AppliedDiscount struct {
	CouponCode     string          `json:"couponCode"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}
