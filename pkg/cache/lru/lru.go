package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
)

// DefaultSize is the capacity used when none is configured
const DefaultSize = 1024

// Cache is a bounded in-process cache. Entries are never expired by time;
// the least recently used entry is evicted once the capacity is reached.
type Cache struct {
	cache   *lru.Cache[string, string]
	onEvict func(key string, value string)
	size    int
}

var _ interfaces.PartnerCache = (*Cache)(nil)

type Option func(*Cache)

// WithSize sets the cache capacity
func WithSize(s int) Option {
	return func(c *Cache) {
		c.size = s
	}
}

// WithEvictCallback sets the eviction callback
func WithEvictCallback(cb func(key string, value string)) Option {
	return func(c *Cache) {
		c.onEvict = cb
	}
}

func New(opts ...Option) (*Cache, error) {
	c := &Cache{size: DefaultSize}
	for _, opt := range opts {
		opt(c)
	}
	if c.size <= 0 {
		c.size = 1
	}

	var err error
	c.cache, err = lru.NewWithEvict(c.size, c.onEvict)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create lru cache", goerr.V("size", c.size))
	}
	return c, nil
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.cache.Get(key)
	return v, ok, nil
}

func (c *Cache) Set(_ context.Context, key, value string) error {
	c.cache.Add(key, value)
	return nil
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return c.cache.Len()
}
