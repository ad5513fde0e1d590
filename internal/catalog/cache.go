package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

const (
	cacheKeyPrefix  = "storefront:catalog:"
	defaultCacheTTL = 10 * time.Minute
)

// Cache is a read-through Redis cache in front of a ProductCatalog.
// Redis failures are logged and the upstream is queried instead.
type Cache struct {
	upstream port.ProductCatalog
	client   *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
}

func NewCache(upstream port.ProductCatalog, client *redis.Client, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream is nil")
	}
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		upstream: upstream,
		client:   client,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return client, nil
}

func (c *Cache) Products(ctx context.Context, limit int) ([]domain.Product, error) {
	return cached(ctx, c, "products:"+strconv.Itoa(limit), func() ([]domain.Product, error) {
		return c.upstream.Products(ctx, limit)
	})
}

func (c *Cache) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return cached(ctx, c, "category:"+category, func() ([]domain.Product, error) {
		return c.upstream.ProductsByCategory(ctx, category)
	})
}

func (c *Cache) Categories(ctx context.Context) ([]string, error) {
	return cached(ctx, c, "categories", func() ([]string, error) {
		return c.upstream.Categories(ctx)
	})
}

func (c *Cache) Product(ctx context.Context, id int64) (domain.Product, error) {
	return cached(ctx, c, "product:"+strconv.FormatInt(id, 10), func() (domain.Product, error) {
		return c.upstream.Product(ctx, id)
	})
}

func cached[T any](ctx context.Context, c *Cache, key string, load func() (T, error)) (T, error) {
	key = cacheKeyPrefix + key

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.logger.WarnContext(ctx, "catalog cache entry is corrupt", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "catalog cache read failed", slog.String("key", key), slog.Any("err", err))
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		return v, nil
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed", slog.String("key", key), slog.Any("err", err))
	}

	return v, nil
}

var _ port.ProductCatalog = (*Cache)(nil)
