package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const (
	jacketsKey      = "catalog:jackets"
	defaultCacheTTL = 5 * time.Minute
)

// CatalogCache stores the public jacket listing as JSON.
type CatalogCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewCatalogCache returns a cache whose entries live for ttl plus up to a
// minute of jitter.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CatalogCache{client: client, baseTTL: ttl}
}

func (c *CatalogCache) GetJackets(ctx context.Context) ([]*domain.Product, error) {
	data, err := c.client.Get(ctx, jacketsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal jackets failed: %w", err)
	}
	return products, nil
}

func (c *CatalogCache) SetJackets(ctx context.Context, products []*domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal jackets failed: %w", err)
	}

	jitter := time.Duration(rand.Int63n(int64(time.Minute)))
	if err := c.client.Set(ctx, jacketsKey, data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, jacketsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
