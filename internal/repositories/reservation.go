package repositories

import (
	"fmt"
	"math"

	"pos/internal/models"
)

// aggregateLineItems sums quantities per product, keeping the order in which
// products first appear. Non-positive quantities and sums that would
// overflow are rejected.
func aggregateLineItems(items []models.LineItem) ([]string, map[string]int, error) {
	if len(items) == 0 {
		return nil, nil, models.NewValidationError("items", "must contain at least one item")
	}
	order := make([]string, 0, len(items))
	wanted := make(map[string]int, len(items))
	for i, item := range items {
		if item.ProductID == "" {
			return nil, nil, models.NewValidationError(fmt.Sprintf("items[%d].productId", i), "is required")
		}
		if item.Quantity <= 0 {
			return nil, nil, models.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
		if wanted[item.ProductID] > math.MaxInt-item.Quantity {
			return nil, nil, models.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "is too large")
		}
		if _, seen := wanted[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		wanted[item.ProductID] += item.Quantity
	}
	return order, wanted, nil
}

// checkAvailability verifies every requested product exists and has enough
// stock, reporting the first failure in request order.
func checkAvailability(order []string, wanted map[string]int, byID map[string]models.Product) error {
	for _, id := range order {
		p, ok := byID[id]
		if !ok {
			return &models.NotFoundError{ID: id}
		}
		if p.Stock < wanted[id] {
			return &models.InsufficientStockError{
				ProductID: id,
				Name:      p.Name,
				Requested: wanted[id],
				Available: p.Stock,
			}
		}
	}
	return nil
}

func indexByID(products []models.Product) map[string]models.Product {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}
