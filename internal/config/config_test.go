package config_test

import (
	"testing"
	"time"

	"pos/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, ":3000", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, "password123", cfg.AdminPass)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, "https://images.pexels.com/", cfg.ImageURLPrefix)
	assert.True(t, cfg.SeedDemoData)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("ADMIN_USER", "till")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")
	t.Setenv("CATALOG_CACHE_TTL", "2m")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, "till", cfg.AdminUser)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.Equal(t, 2*time.Minute, cfg.CatalogCacheTTL)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoad_NonPositiveThresholdFallsBack(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "0")

	cfg := config.Load()

	assert.Equal(t, 10, cfg.LowStockThreshold)
}
