package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces related-page entries in a shared Redis.
const DefaultPrefix = "h2c:related:"

// Cache implements ports.RelatedCache using Redis, so repeated runs
// (or several runners) share related-page lookups.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration for memoized lookups.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a new Redis cache with options.
func New(address string, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr: address,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	cache := &Cache{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get retrieves memoized pages from Redis.
func (c *Cache) Get(ctx context.Context, key string) ([]domain.RelatedPage, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	var pages []domain.RelatedPage
	if err := json.Unmarshal([]byte(val), &pages); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal related pages: %w", err)
	}
	return pages, true, nil
}

// Set stores pages as JSON with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, pages []domain.RelatedPage) error {
	if pages == nil {
		pages = []domain.RelatedPage{}
	}
	data, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("failed to marshal related pages: %w", err)
	}

	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
