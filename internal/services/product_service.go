package services

import (
	"context"
	"errors"
	"strings"

	"pos/internal/cache"
	"pos/internal/models"
	"pos/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo              repositories.ProductRepository
	validator         *Validator
	cache             cache.CatalogCache
	lowStockThreshold int
}

// NewProductService creates a new ProductService. A nil cache disables caching.
func NewProductService(repo repositories.ProductRepository, validator *Validator, catalog cache.CatalogCache, lowStockThreshold int) *ProductService {
	if catalog == nil {
		catalog = cache.NoopCache{}
	}
	return &ProductService{
		repo:              repo,
		validator:         validator,
		cache:             catalog,
		lowStockThreshold: lowStockThreshold,
	}
}

// ListProducts returns the storefront catalogue, optionally filtered by name.
func (s *ProductService) ListProducts(ctx context.Context, name string) ([]models.Product, error) {
	key := "list:" + strings.ToLower(strings.TrimSpace(name))
	products, generation, ok := s.cache.Get(ctx, key)
	if ok {
		return products, nil
	}
	products, err := s.repo.GetAll(ctx, repositories.ProductQuery{Name: name})
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, generation, products)
	return products, nil
}

// ListAllProducts returns every product, newest first, for the admin view.
func (s *ProductService) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx, repositories.ProductQuery{NewestFirst: true})
}

// ListLowStock returns products whose stock is below the threshold.
func (s *ProductService) ListLowStock(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx, repositories.ProductQuery{StockBelow: s.lowStockThreshold, NewestFirst: true})
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and inserts a new product. Nothing is written if
// validation fails.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	product := req.ToProduct()
	if err := s.validator.Product(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, translateDuplicate(err)
	}
	s.cache.Invalidate(ctx)
	return product, nil
}

// UpdateProduct applies a partial update and validates the merged record.
// The read, merge and write happen as one repository step.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.Update(ctx, id, func(p *models.Product) error {
		req.Apply(p)
		return s.validator.Product(p)
	})
	if err != nil {
		return nil, translateDuplicate(err)
	}
	s.cache.Invalidate(ctx)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func translateDuplicate(err error) error {
	if errors.Is(err, repositories.ErrDuplicateBarcode) {
		return models.NewValidationError("barcode", "must be unique")
	}
	return err
}
