package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/m-mizutani/goerr/v2"
)

const (
	keySetCacheTTL = 5 * time.Minute
)

type keySetCache struct {
	mu        sync.Mutex
	set       jwk.Set
	expiresAt time.Time
}

func newKeySetCache() *keySetCache {
	return &keySetCache{}
}

// get returns the cached key set, fetching it again once the TTL passed
func (c *keySetCache) get(ctx context.Context, url string) (jwk.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set != nil && time.Now().Before(c.expiresAt) {
		return c.set, nil
	}

	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("jwks_url", url))
	}

	c.set = set
	c.expiresAt = time.Now().Add(keySetCacheTTL)
	return set, nil
}
