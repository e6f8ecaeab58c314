package review

import (
	"context"
	"strings"

	"storefront/internal/domain"
)

// Service manages product reviews. One review per customer per product.
type Service struct {
	reviews  reviewRepo
	products productRepo
}

type reviewRepo interface {
	Create(ctx context.Context, r domain.Review) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(reviews reviewRepo, products productRepo) *Service {
	return &Service{reviews: reviews, products: products}
}

// Create stores a review for an existing product. Ratings run 1 to 5;
// reviews are auto approved.
func (s *Service) Create(ctx context.Context, productID, customerID string, rating int, title, comment string) (*domain.Review, error) {
	var violations []string
	if rating < 1 || rating > 5 {
		violations = append(violations, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(title) == "" {
		violations = append(violations, "title is required")
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	return s.reviews.Create(ctx, domain.Review{
		ProductID:  productID,
		CustomerID: customerID,
		Rating:     rating,
		Title:      strings.TrimSpace(title),
		Comment:    strings.TrimSpace(comment),
		Approved:   true,
	})
}

// ListByProduct returns the approved reviews for a product.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}
