package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pos/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// A single mutex guards the map, so reservations are serialized.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns products matching the query.
func (r *MemoryProductRepository) GetAll(_ context.Context, query ProductQuery) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := strings.ToLower(strings.TrimSpace(query.Name))
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		if query.StockBelow > 0 && p.Stock >= query.StockBelow {
			continue
		}
		productList = append(productList, p)
	}

	if query.NewestFirst {
		sort.SliceStable(productList, func(i, j int) bool {
			return productList[i].CreatedAt.After(productList[j].CreatedAt)
		})
	} else {
		sort.SliceStable(productList, func(i, j int) bool {
			return productList[i].Name < productList[j].Name
		})
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &models.NotFoundError{ID: id}
	}
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.Normalize()
	if r.barcodeTaken(product.ID, product.Barcode) {
		return ErrDuplicateBarcode
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}
	r.products[product.ID] = *product
	return nil
}

// Update applies the change under the write lock.
func (r *MemoryProductRepository) Update(_ context.Context, id string, apply func(product *models.Product) error) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok {
		return nil, &models.NotFoundError{ID: id}
	}
	product := existing
	if err := apply(&product); err != nil {
		return nil, err
	}
	product.ID = id
	if r.barcodeTaken(id, product.Barcode) {
		return nil, ErrDuplicateBarcode
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return &models.NotFoundError{ID: id}
	}
	delete(r.products, id)
	return nil
}

// ReserveStock validates every line item before touching any stock.
func (r *MemoryProductRepository) ReserveStock(_ context.Context, items []models.LineItem) ([]models.Product, error) {
	order, wanted, err := aggregateLineItems(items)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkAvailability(order, wanted, r.products); err != nil {
		return nil, err
	}

	now := time.Now()
	reserved := make([]models.Product, 0, len(order))
	for _, id := range order {
		p := r.products[id]
		p.Stock -= wanted[id]
		p.UpdatedAt = now
		r.products[id] = p
		reserved = append(reserved, p)
	}
	return reserved, nil
}

func (r *MemoryProductRepository) barcodeTaken(id string, barcode *string) bool {
	if barcode == nil {
		return false
	}
	for _, p := range r.products {
		if p.ID != id && p.Barcode != nil && *p.Barcode == *barcode {
			return true
		}
	}
	return false
}
