package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server reads from the environment.
type Config struct {
	AppPort           string
	DatabaseDriver    string
	DatabaseDSN       string
	AdminUser         string
	AdminPass         string
	RabbitMQURL       string
	RedisAddr         string
	CatalogCacheTTL   time.Duration
	LowStockThreshold int
	ImageURLPrefix    string
	SeedDemoData      bool
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:           v.GetString("APP_PORT"),
		DatabaseDriver:    v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		AdminUser:         v.GetString("ADMIN_USER"),
		AdminPass:         v.GetString("ADMIN_PASS"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		CatalogCacheTTL:   v.GetDuration("CATALOG_CACHE_TTL"),
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
		ImageURLPrefix:    v.GetString("IMAGE_URL_PREFIX"),
		SeedDemoData:      v.GetBool("SEED_DEMO_DATA"),
	}
	if cfg.LowStockThreshold <= 0 {
		log.Printf("[config] LOW_STOCK_THRESHOLD=%d is not positive, using 10", cfg.LowStockThreshold)
		cfg.LowStockThreshold = 10
	}

	log.Printf("[config] APP_PORT=%s DATABASE_DRIVER=%s RABBITMQ=%t REDIS=%t LOW_STOCK_THRESHOLD=%d",
		cfg.AppPort, cfg.DatabaseDriver, cfg.RabbitMQURL != "", cfg.RedisAddr != "", cfg.LowStockThreshold)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "pos.db")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASS", "password123")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CATALOG_CACHE_TTL", "30s")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("IMAGE_URL_PREFIX", "https://images.pexels.com/")
	v.SetDefault("SEED_DEMO_DATA", true)
}
