package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when checkout is attempted on a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMissingReason is returned when an order is cancelled without a reason.
	ErrMissingReason = errors.New("cancellation reason required")
)

// ValidationError collects every input violation so callers can render them
// all at once instead of failing on the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// InvalidQuantityError rejects quantity requests below 1.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1, got %d", e.Quantity)
}

// InsufficientStockError is returned when a requested quantity exceeds the
// product's available stock at call time.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// CouponNotFoundError is returned when no active, currently valid coupon
// matches the given code.
type CouponNotFoundError struct {
	Code string
}

func (e *CouponNotFoundError) Error() string {
	return fmt.Sprintf("coupon %q not found or no longer valid", e.Code)
}

// MinimumPurchaseNotMetError carries the unmet minimum for display.
type MinimumPurchaseNotMetError struct {
	Code      string
	Minimum   decimal.Decimal
	CartTotal decimal.Decimal
}

func (e *MinimumPurchaseNotMetError) Error() string {
	return fmt.Sprintf("minimum purchase for coupon %s is %s, cart total is %s", e.Code, e.Minimum.StringFixed(2), e.CartTotal.StringFixed(2))
}

// InvalidTransitionError names the current and attempted status of an order
// whose transition is not in the lifecycle table.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// OrderNotPayableError is returned when a payment session is requested for
// an order that is no longer awaiting payment.
type OrderNotPayableError struct {
	Status OrderStatus
}

func (e *OrderNotPayableError) Error() string {
	return fmt.Sprintf("order with status %s is not payable", e.Status)
}

// UnknownPaymentStatusError surfaces unrecognized provider statuses to
// operators; the order keeps its last known-good state.
type UnknownPaymentStatusError struct {
	Status string
}

func (e *UnknownPaymentStatusError) Error() string {
	return fmt.Sprintf("unknown payment provider status %q", e.Status)
}
