package domain

import "time"

// PaymentSession links a provider-side payment preference to a local order.
// It is read-only after creation and serves as the correlation key when the
// provider calls back: order state changes are resolved from the provider's
// own reference, never from a client-supplied order id.
type PaymentSession struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"orderId"`
	PreferenceID string    `json:"preferenceId"`
	RedirectURL  string    `json:"redirectUrl"`
	SuccessURL   string    `json:"successUrl"`
	FailureURL   string    `json:"failureUrl"`
	PendingURL   string    `json:"pendingUrl"`
	Superseded   bool      `json:"superseded"`
	CreatedAt    time.Time `json:"createdAt"`
}
