package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if name := strings.TrimSpace(query.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if query.StockBelow > 0 {
		q = q.Where("stock < ?", query.StockBelow)
	}
	if query.NewestFirst {
		q = q.Order("created_at DESC")
	} else {
		q = q.Order("name ASC")
	}

	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product. The ID is assigned by the model hook.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateBarcode
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update reads the row FOR UPDATE, applies the change and writes every column
// back in one transaction, so a reservation committed meanwhile is never
// overwritten.
func (r *GORMProductRepository) Update(ctx context.Context, id string, apply func(product *models.Product) error) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{ID: id}
			}
			return fmt.Errorf("failed to load product %s for update: %w", id, err)
		}
		if err := apply(&product); err != nil {
			return err
		}
		product.ID = id

		if err := tx.Model(&product).Select("*").Omit("id", "created_at").Updates(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateBarcode
			}
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{ID: id}
	}
	return nil
}

// ReserveStock runs the validate-and-decrement in a single transaction.
// Referenced rows are locked FOR UPDATE where the dialect supports it (the
// SQLite dialector drops the clause), and each decrement is conditional on
// the stock still covering the quantity, so two overlapping reservations can
// never both push a product below zero.
func (r *GORMProductRepository) ReserveStock(ctx context.Context, items []models.LineItem) ([]models.Product, error) {
	order, wanted, err := aggregateLineItems(items)
	if err != nil {
		return nil, err
	}

	var reserved []models.Product
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", order).
			Find(&current).Error; err != nil {
			return fmt.Errorf("failed to load products for reservation: %w", err)
		}
		byID := indexByID(current)
		if err := checkAvailability(order, wanted, byID); err != nil {
			return err
		}

		for _, id := range order {
			qty := wanted[id]
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", id, qty).
				Update("stock", gorm.Expr("stock - ?", qty))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				// Someone else took the stock between the read and the write.
				p := byID[id]
				return &models.InsufficientStockError{ProductID: id, Name: p.Name, Requested: qty, Available: p.Stock}
			}
		}

		var updated []models.Product
		if err := tx.Where("id IN ?", order).Find(&updated).Error; err != nil {
			return fmt.Errorf("failed to reload reserved products: %w", err)
		}
		after := indexByID(updated)
		reserved = make([]models.Product, 0, len(order))
		for _, id := range order {
			reserved = append(reserved, after[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}
