package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/mlozanov/storefront/internal/model"
)

// ProductRepository provides CRUD access to the product catalog.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, p *model.Product) error
	// GetByID loads a product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// List returns the whole catalog ordered by name.
	List(ctx context.Context) ([]model.Product, error)
	// Update overwrites a product's mutable fields.
	Update(ctx context.Context, p *model.Product) error
	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error
}
