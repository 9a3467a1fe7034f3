package redis

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/redis/go-redis/v9"
)

// Config is the configuration for the Redis cache
type Config struct {
	// Addr is the Redis address [host][:port]
	Addr     string
	Username string
	Password string `masq:"secret"`
	DB       int
	// KeyPrefix is prepended to every partner ID
	KeyPrefix string
}

// Cache stores partner snapshots in Redis without expiry
type Cache struct {
	client *redis.Client
	prefix string
}

var _ interfaces.PartnerCache = (*Cache)(nil)

// New connects to Redis and checks the connection
func New(ctx context.Context, cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect redis", goerr.V("addr", cfg.Addr))
	}

	return &Cache{client: client, prefix: cfg.KeyPrefix}, nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to get cache entry", goerr.V("key", key))
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	// zero expiration keeps the entry until it is overwritten
	if err := c.client.Set(ctx, c.prefix+key, value, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to set cache entry", goerr.V("key", key))
	}
	return nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}
