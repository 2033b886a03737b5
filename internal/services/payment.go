package services

import (
	"pos/internal/models"

	"github.com/google/uuid"
)

// newTransactionID derives a confirmation ID whose prefix names the payment
// method. token is a UUID string.
func newTransactionID(method, token string) string {
	switch method {
	case models.PaymentMpesa:
		return "MPESA-" + token[:6]
	case models.PaymentCard:
		return "CARD-" + token[:8]
	default:
		return token
	}
}

// confirmPayment fabricates a confirmation. There is no gateway behind it.
func confirmPayment(req models.CheckoutRequest, newToken func() string) models.PaymentConfirmation {
	confirmation := models.PaymentConfirmation{
		Success:       true,
		TransactionID: newTransactionID(req.PaymentMethod, newToken()),
	}
	if req.PaymentMethod == models.PaymentMpesa {
		confirmation.Phone = req.Phone
	}
	return confirmation
}

func uuidToken() string { return uuid.New().String() }
