package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/mlozanov/storefront/internal/model"
)

// OrderRepository stores placed orders and their detail lines.
type OrderRepository interface {
	// CreateFromCart atomically turns the user's cart into an order:
	// detail lines priced at the current product price, the order total as
	// their sum, and the cart cleared — all within one transaction.
	// An empty cart yields errs.ErrEmptyCart.
	CreateFromCart(ctx context.Context, userID uuid.UUID) (*model.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	// GetByID loads one order with its detail lines, scoped to the owner.
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, []model.OrderDetail, error)
}
