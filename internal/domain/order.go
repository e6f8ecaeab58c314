package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed vocabulary for an order's lifecycle state.
type OrderStatus string

const (
	OrderCreated    OrderStatus = "CREATED"
	OrderPaid       OrderStatus = "PAID"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// PaymentStatus is the provider-reported payment state, an independent axis
// from the order status.
type PaymentStatus string

const (
	PaymentNotStarted PaymentStatus = "NOT_STARTED"
	PaymentPending    PaymentStatus = "PENDING"
	PaymentApproved   PaymentStatus = "APPROVED"
	PaymentRejected   PaymentStatus = "REJECTED"
)

// transitions is the only source of truth for legal status edges.
// DELIVERED and CANCELLED are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderCreated:    {OrderPaid, OrderCancelled},
	OrderPaid:       {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// CanTransition reports whether the edge from -> to is in the lifecycle table.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return CanTransition(s, OrderCancelled)
}

// Terminal reports whether no further transitions exist for this status.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// AtLeastPaid reports whether the order has progressed to PAID or beyond.
// Cancelled orders do not count: they never reached payment.
func (s OrderStatus) AtLeastPaid() bool {
	switch s {
	case OrderPaid, OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// ShippingInfo is the delivery destination captured at checkout.
type ShippingInfo struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Apartment  string `json:"apartment,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Order is an immutable snapshot of a cart at checkout plus lifecycle state.
// Status only ever changes through the lifecycle manager's transitions;
// orders are never deleted, cancellation is a terminal status.
type Order struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customerId"`
	Items          []OrderItem     `json:"items"`
	Status         OrderStatus     `json:"status"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	Total          decimal.Decimal `json:"total"`
	CouponCode     string          `json:"couponCode,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`

	Shipping         ShippingInfo `json:"shipping"`
	DeliveryType     string       `json:"deliveryType"`
	DeliveryDate     *time.Time   `json:"deliveryDate,omitempty"`
	DeliveryTimeSlot string       `json:"deliveryTimeSlot,omitempty"`

	TrackingNumber    string     `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	ShippedAt         *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`

	PreferenceID string `json:"preferenceId,omitempty"`
	PaymentID    string `json:"paymentId,omitempty"`

	CancellationReason string `json:"cancellationReason,omitempty"`
	Notes              string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem snapshots a product at purchase time; the price is frozen, not a
// live reference to the catalog.
type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"orderId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

// Subtotal is the frozen unit price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums item subtotals before any discount.
func (o Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
