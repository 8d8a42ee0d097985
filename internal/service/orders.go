package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
	"github.com/mlozanov/storefront/internal/repository"
)

// OrderService defines order placement and retrieval.
type OrderService interface {
	// Place turns the user's cart into an order. Empty carts yield
	// errs.ErrEmptyCart.
	Place(ctx context.Context, userID uuid.UUID) (*model.Order, error)
	// List returns the user's orders, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	// Get returns one order with its detail lines.
	Get(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, []model.OrderDetail, error)
}

type OrderServiceImpl struct {
	repo repository.OrderRepository
}

// NewOrderService constructs OrderService.
func NewOrderService(repo repository.OrderRepository) *OrderServiceImpl {
	return &OrderServiceImpl{repo: repo}
}

// Place delegates the cart-to-order conversion to the repository, which runs
// it in a single transaction.
func (s *OrderServiceImpl) Place(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	return s.repo.CreateFromCart(ctx, userID)
}

// List returns the user's orders.
func (s *OrderServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one order with details, scoped to the owner.
func (s *OrderServiceImpl) Get(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, []model.OrderDetail, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: empty userID/orderID", errs.ErrValidation)
	}
	return s.repo.GetByID(ctx, userID, orderID)
}
