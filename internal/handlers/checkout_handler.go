package handlers

import (
	"pos/internal/applog"
	"pos/internal/models"
	"pos/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// RegisterRoutes registers the checkout route.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout reserves stock for the cart and returns a payment
// confirmation. Unknown products, short stock and bad input are client
// errors; anything else is a server error.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	resp, err := h.service.Checkout(c.UserContext(), req)
	if err != nil {
		applog.Error(c, "checkout.failed", err, map[string]any{
			"items":          len(req.Items),
			"payment_method": req.PaymentMethod,
		})
		return writeError(c, err, fiber.StatusBadRequest)
	}

	applog.Info(c, "checkout.completed", map[string]any{
		"transaction_id": resp.Payment.TransactionID,
		"items":          len(req.Items),
		"payment_method": req.PaymentMethod,
	})
	return c.JSON(resp)
}
