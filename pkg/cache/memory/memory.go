package memory

import (
	"context"
	"sync"

	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
)

// Cache is an unbounded in-process cache. Entries live until overwritten.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

var _ interfaces.PartnerCache = (*Cache)(nil)

func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *Cache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}
