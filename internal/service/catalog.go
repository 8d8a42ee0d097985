package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/gofrs/uuid/v5"

	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
	"github.com/mlozanov/storefront/internal/repository"
)

// priceRe accepts plain decimal amounts like "10", "10.5", "10.50".
var priceRe = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// CatalogService defines CRUD operations over the product catalog.
type CatalogService interface {
	// Create validates and inserts a new product, assigning its ID.
	Create(ctx context.Context, p *model.Product) error
	// Get returns a single product by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// List returns the whole catalog.
	List(ctx context.Context) ([]model.Product, error)
	// Update validates and overwrites an existing product.
	Update(ctx context.Context, p *model.Product) error
	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error
}

type CatalogServiceImpl struct {
	repo repository.ProductRepository
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(repo repository.ProductRepository) *CatalogServiceImpl {
	return &CatalogServiceImpl{repo: repo}
}

func validateProduct(p *model.Product) error {
	if p.Name == "" || len(p.Name) > 100 {
		return fmt.Errorf("%w: name empty or too long", errs.ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: empty description", errs.ErrValidation)
	}
	if !priceRe.MatchString(p.Price) {
		return fmt.Errorf("%w: malformed price", errs.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: negative stock", errs.ErrValidation)
	}
	return nil
}

// Create validates input and inserts the product with a fresh ID.
func (s *CatalogServiceImpl) Create(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	p.ID = id
	return s.repo.Create(ctx, p)
}

// Get fetches a single product by id.
func (s *CatalogServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all products.
func (s *CatalogServiceImpl) List(ctx context.Context) ([]model.Product, error) {
	return s.repo.List(ctx)
}

// Update validates input and overwrites the stored product.
func (s *CatalogServiceImpl) Update(ctx context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a product by id.
func (s *CatalogServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}
