package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"pos/internal/cache"
	"pos/internal/config"
	"pos/internal/database"
	"pos/internal/handlers"
	"pos/internal/middleware"
	"pos/internal/models"
	"pos/internal/repositories"
	"pos/internal/services"
	"pos/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	app, cleanup, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}
	defer cleanup()

	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp wires storage, broker, cache, services and routes. The returned
// cleanup closes everything newApp opened.
func newApp(cfg config.Config) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Storage ---
	var productRepo repositories.ProductRepository
	if cfg.DatabaseDriver == database.DriverMemory {
		productRepo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() {
			if err := database.Close(db); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		})
		productRepo = repositories.NewGORMProductRepository(db)
	}

	if cfg.SeedDemoData {
		seedProducts(productRepo)
	}

	// --- Message broker (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		closers = append(closers, func() {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		})
		publisher = mqClient

		log.Println("Starting RabbitMQ consumer for stock events...")
		if err := mqClient.ConsumeStockEvents(services.HandleStockEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL not set, stock events will not be published")
	}

	// --- Catalog cache (optional) ---
	var catalog cache.CatalogCache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCatalogCache(ctx, cfg.RedisAddr, cfg.CatalogCacheTTL)
		cancel()
		if err != nil {
			log.Printf("Catalog cache disabled: %v", err)
		} else {
			closers = append(closers, func() { _ = redisCache.Close() })
			catalog = redisCache
		}
	}

	// --- Services & handlers ---
	validator := services.NewValidator(cfg.ImageURLPrefix)
	productService := services.NewProductService(productRepo, validator, catalog, cfg.LowStockThreshold)
	checkoutService := services.NewCheckoutService(productRepo, validator, publisher, catalog, cfg.LowStockThreshold)

	productHandler := handlers.NewProductHandler(productService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)

	adminAuth, err := middleware.AdminAuth(cfg.AdminUser, cfg.AdminPass)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		AppName:      "pos",
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	checkoutHandler.RegisterRoutes(api)

	admin := app.Group("/admin", adminAuth)
	productHandler.RegisterAdminRoutes(admin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, cleanup, nil
}

// seedProducts fills an empty catalogue with demo products.
func seedProducts(repo repositories.ProductRepository) {
	ctx := context.Background()
	existing, err := repo.GetAll(ctx, repositories.ProductQuery{})
	if err != nil {
		log.Printf("Error checking catalogue before seeding: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Espresso Beans", Price: 12.50, Stock: 40, Variety: []string{"dark roast", "medium roast"},
			Images: []string{"https://images.pexels.com/photos/894695/pexels-photo-894695.jpeg"}},
		{Name: "Green Tea", Price: 6.00, Stock: 25, Variety: []string{"jasmine", "mint"},
			Images: []string{"https://images.pexels.com/photos/1417945/pexels-photo-1417945.jpeg"}},
		{Name: "Dark Chocolate Bar", Price: 3.75, Stock: 8, Variety: []string{"70%", "85%"},
			Images: []string{"https://images.pexels.com/photos/65882/chocolate-dark-coffee-confiserie-65882.jpeg"}},
	}
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
