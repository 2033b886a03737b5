package services

import (
	"context"
	"log"
	"time"

	"pos/internal/cache"
	"pos/internal/models"
	"pos/internal/repositories"
)

// EventPublisher sends stock events to the message broker.
type EventPublisher interface {
	PublishStockEvent(ctx context.Context, event interface{}) error
}

// CheckoutService reserves stock for a cart and issues a payment confirmation.
//
// There is no idempotency key: submitting the same request twice reserves
// the stock twice.
type CheckoutService struct {
	repo              repositories.ProductRepository
	validator         *Validator
	publisher         EventPublisher
	cache             cache.CatalogCache
	lowStockThreshold int
	newToken          func() string
	now               func() time.Time
}

// NewCheckoutService creates a new CheckoutService. publisher and catalog may be nil.
func NewCheckoutService(repo repositories.ProductRepository, validator *Validator, publisher EventPublisher, catalog cache.CatalogCache, lowStockThreshold int) *CheckoutService {
	if catalog == nil {
		catalog = cache.NoopCache{}
	}
	return &CheckoutService{
		repo:              repo,
		validator:         validator,
		publisher:         publisher,
		cache:             catalog,
		lowStockThreshold: lowStockThreshold,
		newToken:          uuidToken,
		now:               time.Now,
	}
}

// Checkout validates the request, reserves stock atomically and returns the
// confirmation. On any error no stock has changed.
func (s *CheckoutService) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	reserved, err := s.repo.ReserveStock(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	resp := &models.CheckoutResponse{
		Success:   true,
		Payment:   confirmPayment(req, s.newToken),
		Timestamp: s.now(),
	}
	s.publish(ctx, req, reserved, resp)
	return resp, nil
}

// publish emits the stock event. A broker failure never fails the checkout:
// the stock has already been committed.
func (s *CheckoutService) publish(ctx context.Context, req models.CheckoutRequest, reserved []models.Product, resp *models.CheckoutResponse) {
	if s.publisher == nil {
		return
	}
	event := s.stockEvent(req, reserved, resp)
	if err := s.publisher.PublishStockEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to publish stock event for transaction %s: %v", resp.Payment.TransactionID, err)
	}
}

func (s *CheckoutService) stockEvent(req models.CheckoutRequest, reserved []models.Product, resp *models.CheckoutResponse) models.StockEvent {
	requested := make(map[string]int, len(req.Items))
	for _, item := range req.Items {
		requested[item.ProductID] += item.Quantity
	}

	event := models.StockEvent{
		Type:          models.StockEventReserved,
		TransactionID: resp.Payment.TransactionID,
		PaymentMethod: req.PaymentMethod,
		Items:         make([]models.StockLevel, 0, len(reserved)),
		OccurredAt:    resp.Timestamp,
	}
	for _, p := range reserved {
		level := models.StockLevel{ProductID: p.ID, Name: p.Name, Reserved: requested[p.ID], Stock: p.Stock}
		event.Items = append(event.Items, level)
		if p.Stock < s.lowStockThreshold {
			event.LowStock = append(event.LowStock, level)
		}
	}
	return event
}
