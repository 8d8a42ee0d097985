package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
	"github.com/mlozanov/storefront/internal/repository"
)

// CartService defines operations over a user's shopping cart.
type CartService interface {
	// Add puts a product into the user's cart, accumulating quantity.
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error)
	// List returns the user's cart lines.
	List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	// UpdateQuantity sets the quantity of one cart line.
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	// Remove deletes one cart line.
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
}

type CartServiceImpl struct {
	cart     repository.CartRepository
	products repository.ProductRepository
}

// NewCartService constructs CartService.
func NewCartService(cart repository.CartRepository, products repository.ProductRepository) *CartServiceImpl {
	return &CartServiceImpl{cart: cart, products: products}
}

// Add verifies the product exists and upserts the cart line.
func (s *CartServiceImpl) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID/productID", errs.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: non-positive quantity", errs.ErrValidation)
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	item := &model.CartItem{ID: id, UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.cart.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// List returns the user's cart lines.
func (s *CartServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	return s.cart.ListByUser(ctx, userID)
}

// UpdateQuantity sets the quantity of one cart line owned by the user.
func (s *CartServiceImpl) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return fmt.Errorf("%w: empty userID/itemID", errs.ErrValidation)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: non-positive quantity", errs.ErrValidation)
	}
	return s.cart.UpdateQuantity(ctx, userID, itemID, quantity)
}

// Remove deletes one cart line owned by the user.
func (s *CartServiceImpl) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return fmt.Errorf("%w: empty userID/itemID", errs.ErrValidation)
	}
	return s.cart.Delete(ctx, userID, itemID)
}
