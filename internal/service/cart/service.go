package cart

import (
	"context"

	"storefront/internal/domain"
)

// Service is the cart aggregate: it owns all cart mutations and always
// recomputes the total from the stored line items. Stock is read from the
// product collaborator at call time, never cached.
type Service struct {
	repo     cartRepo
	products productRepo
}

type cartRepo interface {
	GetOrCreateActive(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
	SetCoupon(ctx context.Context, cartID, code string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the customer's active cart, creating one when none exists.
func (s *Service) Get(ctx context.Context, customerID string) (*domain.Cart, error) {
	return s.repo.GetOrCreateActive(ctx, customerID)
}

// AddItem puts quantity units of the product into the cart, snapshotting the
// unit price. If the product is already in the cart the line is incremented,
// and the combined quantity is validated against current stock.
func (s *Service) AddItem(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, &domain.InvalidQuantityError{Quantity: quantity}
	}

	cart, err := s.repo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	if existing, ok := cart.ItemFor(productID); ok {
		requested += existing.Quantity
	}
	if !product.InStock(requested) {
		return nil, &domain.InsufficientStockError{
			ProductID: product.ID,
			Requested: requested,
			Available: product.Stock,
		}
	}

	if err := s.repo.AddItem(ctx, cart.ID, *product, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateActive(ctx, customerID)
}

// UpdateQuantity sets an item's quantity, validating against current stock.
func (s *Service) UpdateQuantity(ctx context.Context, customerID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, &domain.InvalidQuantityError{Quantity: quantity}
	}

	cart, err := s.repo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var productID string
	for _, item := range cart.Items {
		if item.ID == itemID {
			productID = item.ProductID
			break
		}
	}
	if productID == "" {
		return nil, domain.ErrNotFound
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock(quantity) {
		return nil, &domain.InsufficientStockError{
			ProductID: product.ID,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	if err := s.repo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateActive(ctx, customerID)
}

// RemoveItem deletes one line from the cart.
func (s *Service) RemoveItem(ctx context.Context, customerID, itemID string) (*domain.Cart, error) {
	cart, err := s.repo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateActive(ctx, customerID)
}

// Clear removes every item and any applied coupon from the cart.
func (s *Service) Clear(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := s.repo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateActive(ctx, customerID)
}

// SetCoupon records the applied coupon code on the active cart. An empty
// code clears it.
func (s *Service) SetCoupon(ctx context.Context, customerID, code string) (*domain.Cart, error) {
	cart, err := s.repo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCoupon(ctx, cart.ID, code); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateActive(ctx, customerID)
}
