package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repository/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const tokenTTL = 30 * 24 * time.Hour

// Service handles customer accounts and bearer tokens.
type Service struct {
	customers customerRepo
	tokens    tokenRepo
}

type customerRepo interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type tokenRepo interface {
	Create(ctx context.Context, t token.Token) error
	Get(ctx context.Context, tok string) (*token.Token, error)
	Delete(ctx context.Context, tok string) error
}

func New(customers customerRepo, tokens tokenRepo) *Service {
	return &Service{customers: customers, tokens: tokens}
}

// SignupInput is the registration payload.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

func (in SignupInput) validate() error {
	var violations []string
	if !strings.Contains(in.Email, "@") {
		violations = append(violations, "a valid email is required")
	}
	if len(in.Password) < 8 {
		violations = append(violations, "password must be at least 8 characters")
	}
	if strings.TrimSpace(in.FullName) == "" {
		violations = append(violations, "full name is required")
	}
	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

// Signup registers a new customer and logs them straight in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Customer, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	created, err := s.customers.Create(ctx, domain.Customer{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
	})
	if err != nil {
		return nil, "", err
	}

	tok, err := s.issueToken(ctx, created.ID)
	if err != nil {
		return nil, "", err
	}
	return created, tok, nil
}

// Login checks credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Customer, string, error) {
	c, err := s.customers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.issueToken(ctx, c.ID)
	if err != nil {
		return nil, "", err
	}
	return c, tok, nil
}

// Logout invalidates a token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, tok string) error {
	return s.tokens.Delete(ctx, tok)
}

// LookupByToken resolves a bearer token to its customer.
func (s *Service) LookupByToken(ctx context.Context, tok string) (*domain.Customer, error) {
	record, err := s.tokens.Get(ctx, tok)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		_ = s.tokens.Delete(ctx, tok)
		return nil, ErrInvalidToken
	}
	return s.customers.GetByID(ctx, record.CustomerID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// issueToken mints a random token, retrying on the astronomically unlikely
// collision with an existing one.
func (s *Service) issueToken(ctx context.Context, customerID string) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		tok := base64.RawURLEncoding.EncodeToString(raw)
		err := s.tokens.Create(ctx, token.Token{
			Token:      tok,
			CustomerID: customerID,
			Kind:       "session",
			ExpiresAt:  time.Now().Add(tokenTTL),
		})
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return "", err
		}
	}
	return "", errors.New("could not issue session token")
}
