package repositories

import (
	"context"
	"errors"

	"pos/internal/models"
)

// ErrDuplicateBarcode is returned when a create or update would give two
// products the same barcode.
var ErrDuplicateBarcode = errors.New("barcode already in use")

// ProductQuery narrows GetAll.
type ProductQuery struct {
	// Name keeps products whose name contains it, case-insensitively.
	Name string
	// StockBelow keeps products with stock strictly lower than it. Zero disables the filter.
	StockBelow  int
	NewestFirst bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context, query ProductQuery) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update loads the product, lets apply modify it and writes it back as one
	// step. Nothing is written when apply returns an error.
	Update(ctx context.Context, id string, apply func(product *models.Product) error) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	// ReserveStock decrements stock for every line item or for none of them.
	// It returns the updated products in request order.
	ReserveStock(ctx context.Context, items []models.LineItem) ([]models.Product, error)
}
