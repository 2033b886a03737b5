package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"pos/internal/models"

	"github.com/redis/go-redis/v9"
)

// CatalogCache stores product listings served to the storefront.
type CatalogCache interface {
	// Get returns a cached listing and the generation it was looked up
	// under. Pass that generation to Set when filling a miss.
	Get(ctx context.Context, key string) (products []models.Product, generation int64, ok bool)
	// Set stores a listing read during generation. A listing from before the
	// latest Invalidate is never served.
	Set(ctx context.Context, key string, generation int64, products []models.Product)
	// Invalidate drops every cached listing.
	Invalidate(ctx context.Context)
}

// NoopCache never hits. It is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]models.Product, int64, bool) { return nil, 0, false }
func (NoopCache) Set(context.Context, string, int64, []models.Product)       {}
func (NoopCache) Invalidate(context.Context)                                 {}

const (
	keyPrefix     = "pos:catalog:"
	generationKey = keyPrefix + "generation"
)

// RedisCatalogCache keeps listings as JSON strings with a TTL, keyed by a
// generation counter that Invalidate bumps. Errors are logged and treated as
// misses; the database stays the source of truth.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCatalogCache connects to Redis and checks the connection.
func NewRedisCatalogCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCatalogCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	log.Printf("Redis catalog cache connected (%s, ttl %s)", addr, ttl)
	return NewRedisCatalogCacheWithClient(client, ttl), nil
}

// NewRedisCatalogCacheWithClient wraps an existing client.
func NewRedisCatalogCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{client: client, ttl: ttl}
}

func listingKey(generation int64, key string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, generation, key)
}

func (c *RedisCatalogCache) Get(ctx context.Context, key string) ([]models.Product, int64, bool) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("catalog cache generation: %v", err)
		return nil, -1, false
	}

	data, err := c.client.Get(ctx, listingKey(generation, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("catalog cache get %q: %v", key, err)
		}
		return nil, generation, false
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Printf("catalog cache decode %q: %v", key, err)
		return nil, generation, false
	}
	return products, generation, true
}

func (c *RedisCatalogCache) Set(ctx context.Context, key string, generation int64, products []models.Product) {
	if generation < 0 {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		log.Printf("catalog cache encode %q: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, listingKey(generation, key), data, c.ttl).Err(); err != nil {
		log.Printf("catalog cache set %q: %v", key, err)
	}
}

// Invalidate moves readers to a new generation. Listings of older
// generations are left to expire.
func (c *RedisCatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		log.Printf("catalog cache invalidate: %v", err)
	}
}

// Close closes the Redis client.
func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}
