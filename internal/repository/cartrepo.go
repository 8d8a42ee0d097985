package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/mlozanov/storefront/internal/model"
)

// CartRepository stores the per-user shopping cart. One row per
// (user, product); adding an existing product accumulates quantity.
type CartRepository interface {
	// Add inserts a cart line or increases the quantity of an existing one.
	Add(ctx context.Context, item *model.CartItem) error
	// ListByUser returns all cart lines of a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	// UpdateQuantity sets the quantity of an existing cart line owned by userID.
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	// Delete removes a cart line owned by userID.
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}
