package handlers

import (
	"log"

	"pos/internal/applog"
	"pos/internal/models"
	"pos/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the storefront product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
}

// RegisterAdminRoutes registers the admin CRUD routes. The router is expected
// to be guarded already.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Get("/", h.HandleAdminListProducts)
	// Must be registered before /:id.
	products.Get("/low-stock", h.HandleListLowStock)
	products.Get("/:id", h.HandleGetProduct)
	products.Post("/", h.HandleCreateProduct)
	products.Put("/:id", h.HandleUpdateProduct)
	products.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts returns the catalogue, filtered by ?q= when given.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("q"))
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return writeError(c, err, fiber.StatusNotFound)
	}
	return c.JSON(products)
}

// HandleAdminListProducts returns every product, newest first.
func (h *ProductHandler) HandleAdminListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListAllProducts(c.UserContext())
	if err != nil {
		log.Printf("Error listing products for admin: %v", err)
		return writeError(c, err, fiber.StatusNotFound)
	}
	return c.JSON(products)
}

// HandleListLowStock returns products under the low-stock threshold.
func (h *ProductHandler) HandleListLowStock(c *fiber.Ctx) error {
	products, err := h.service.ListLowStock(c.UserContext())
	if err != nil {
		log.Printf("Error listing low-stock products: %v", err)
		return writeError(c, err, fiber.StatusNotFound)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err, fiber.StatusNotFound)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		applog.Error(c, "product.create", err, nil)
		return writeError(c, err, fiber.StatusNotFound)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": product.ID, "name": product.Name})
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, req)
	if err != nil {
		applog.Error(c, "product.update", err, map[string]any{"product_id": id})
		return writeError(c, err, fiber.StatusNotFound)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": id, "stock": product.Stock})
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		applog.Error(c, "product.delete", err, map[string]any{"product_id": id})
		return writeError(c, err, fiber.StatusNotFound)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
