package models

import "time"

// Payment methods accepted at checkout.
const (
	PaymentCash  = "cash"
	PaymentCard  = "card"
	PaymentMpesa = "mpesa"
)

// LineItem is one (product, quantity) pair of a checkout request.
type LineItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	Items         []LineItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string     `json:"paymentMethod" validate:"required,oneof=cash card mpesa"`
	Phone         string     `json:"phone" validate:"required_if=PaymentMethod mpesa,omitempty,numeric,min=9,max=15"`
}

// PaymentConfirmation is the synthesized receipt for a checkout. No payment
// is actually captured.
type PaymentConfirmation struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Phone         string `json:"phone,omitempty"`
}

// CheckoutResponse is returned on a successful checkout.
type CheckoutResponse struct {
	Success   bool                `json:"success"`
	Payment   PaymentConfirmation `json:"payment"`
	Timestamp time.Time           `json:"timestamp"`
}

// StockLevel is a product's stock after a reservation.
type StockLevel struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Reserved  int    `json:"reserved,omitempty"`
	Stock     int    `json:"stock"`
}

// StockEvent is published to the broker after every successful reservation.
type StockEvent struct {
	Type          string       `json:"type"`
	TransactionID string       `json:"transactionId"`
	PaymentMethod string       `json:"paymentMethod"`
	Items         []StockLevel `json:"items"`
	LowStock      []StockLevel `json:"lowStock,omitempty"`
	OccurredAt    time.Time    `json:"occurredAt"`
}

// StockEventReserved is the type of the event emitted by checkout.
const StockEventReserved = "stock.reserved"
