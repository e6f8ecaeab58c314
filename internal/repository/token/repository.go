package token

import (
	"context"
	"time"
)

// Token is an opaque credential tied to a customer.
type Token struct {
	Token      string
	CustomerID string
	Kind       string
	ExpiresAt  time.Time
}

type Repository interface {
	// Create returns domain.ErrAlreadyExists on a token collision.
	Create(ctx context.Context, t Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
