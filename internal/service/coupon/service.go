package coupon

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Service evaluates coupon codes against cart totals. Applying a coupon
// reserves one use against the coupon's usage counter; removing it releases
// the reservation.
type Service struct {
	repo couponRepo
	now  func() time.Time
}

type couponRepo interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	ReserveUse(ctx context.Context, id string) error
	ReleaseUse(ctx context.Context, id string) error
}

func New(repo couponRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Normalize canonicalizes a coupon code: trimmed, uppercase.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate validates the code against the cart total and computes the
// discount without touching the usage counter.
func (s *Service) Evaluate(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.AppliedDiscount, error) {
	_, applied, err := s.lookup(ctx, code, cartTotal)
	return applied, err
}

// Apply validates the code, computes the discount and reserves one use.
func (s *Service) Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.AppliedDiscount, error) {
	coupon, applied, err := s.lookup(ctx, code, cartTotal)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReserveUse(ctx, coupon.ID); err != nil {
		// The usage limit filled up between lookup and reservation.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.CouponNotFoundError{Code: applied.CouponCode}
		}
		return nil, err
	}
	return applied, nil
}

// Remove releases a previously reserved use. Removing when nothing is
// applied is a no-op, not an error.
func (s *Service) Remove(ctx context.Context, code string) error {
	normalized := Normalize(code)
	if normalized == "" {
		return nil
	}
	coupon, err := s.repo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.repo.ReleaseUse(ctx, coupon.ID)
}

func (s *Service) lookup(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.Coupon, *domain.AppliedDiscount, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, nil, &domain.CouponNotFoundError{Code: code}
	}

	coupon, err := s.repo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &domain.CouponNotFoundError{Code: normalized}
		}
		return nil, nil, err
	}
	if !coupon.ValidAt(s.now()) {
		return nil, nil, &domain.CouponNotFoundError{Code: normalized}
	}
	if cartTotal.LessThan(coupon.MinPurchase) {
		return nil, nil, &domain.MinimumPurchaseNotMetError{
			Code:      coupon.Code,
			Minimum:   coupon.MinPurchase,
			CartTotal: cartTotal,
		}
	}

	return coupon, &domain.AppliedDiscount{
		CouponCode:     coupon.Code,
		DiscountAmount: coupon.DiscountFor(cartTotal),
	}, nil
}
