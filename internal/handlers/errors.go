package handlers

import (
	"errors"

	"pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error to an HTTP status. notFound is the status
// used for an unknown product: 404 on direct lookups, 400 inside checkout.
func statusFor(err error, notFound int) int {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var stockErr *models.InsufficientStockError
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return notFound
	case errors.As(err, &stockErr):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as {message} (plus per-field errors for validation
// failures).
func writeError(c *fiber.Ctx, err error, notFound int) error {
	body := fiber.Map{"message": err.Error()}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		body["errors"] = validationErr.Fields
	}
	return c.Status(statusFor(err, notFound)).JSON(body)
}

// ErrorHandler is the Fiber error handler for anything a handler returns
// without rendering, such as routing errors or recovered panics.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
