package domain

import "time"

// Customer represents a registered storefront user.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"createdAt"`
}
