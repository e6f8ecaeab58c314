package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the cart total.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixedAmount subtracts a fixed amount, capped at the cart total.
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// Coupon is an immutable business record describing a discount rule.
type Coupon struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	Description   string           `json:"description,omitempty"`
	DiscountType  DiscountType     `json:"discountType"`
	DiscountValue decimal.Decimal  `json:"discountValue"`
	MinPurchase   decimal.Decimal  `json:"minPurchase"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount,omitempty"`
	ValidFrom     time.Time        `json:"validFrom"`
	ValidUntil    *time.Time       `json:"validUntil,omitempty"`
	MaxUses       *int             `json:"maxUses,omitempty"`
	CurrentUses   int              `json:"currentUses"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ValidAt reports whether the coupon is active, inside its validity window
// and below its usage limit at the given time.
func (c Coupon) ValidAt(now time.Time) bool {
	if !c.Active {
		return false
	}
	if now.Before(c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return false
	}
	return true
}

// DiscountFor computes the discount this coupon grants on the given total.
// A fixed discount never exceeds the total; a percentage discount honors the
// optional max discount cap. Amounts are rounded to currency precision.
func (c Coupon) DiscountFor(cartTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = cartTotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case DiscountFixedAmount:
		discount = c.DiscountValue
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(cartTotal) {
		discount = cartTotal
	}
	return discount.Round(2)
}
