package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/cache/lru"
	"github.com/partnerflow/partnerflow/pkg/cache/memory"
	"github.com/partnerflow/partnerflow/pkg/cache/redis"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheLRU    = "lru"
	CacheRedis  = "redis"
)

// Cache holds CLI flags for the partner cache
type Cache struct {
	backend   string
	lruSize   int
	redis     redis.Config
	closeFunc func() error
}

func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-backend",
			Usage:       "Partner cache backend (memory, lru or redis)",
			Category:    "Cache",
			Value:       CacheMemory,
			Sources:     cli.EnvVars("PARTNERFLOW_CACHE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.IntFlag{
			Name:        "cache-lru-size",
			Usage:       "Capacity of the lru cache",
			Category:    "Cache",
			Value:       lru.DefaultSize,
			Sources:     cli.EnvVars("PARTNERFLOW_CACHE_LRU_SIZE"),
			Destination: &x.lruSize,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port)",
			Category:    "Cache",
			Sources:     cli.EnvVars("PARTNERFLOW_REDIS_ADDR"),
			Destination: &x.redis.Addr,
		},
		&cli.StringFlag{
			Name:        "redis-username",
			Usage:       "Redis username",
			Category:    "Cache",
			Sources:     cli.EnvVars("PARTNERFLOW_REDIS_USERNAME"),
			Destination: &x.redis.Username,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Cache",
			Sources:     cli.EnvVars("PARTNERFLOW_REDIS_PASSWORD"),
			Destination: &x.redis.Password,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Cache",
			Sources:     cli.EnvVars("PARTNERFLOW_REDIS_DB"),
			Destination: &x.redis.DB,
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Usage:       "Prefix of partner cache keys",
			Category:    "Cache",
			Value:       "partnerflow:partner:",
			Sources:     cli.EnvVars("PARTNERFLOW_REDIS_KEY_PREFIX"),
			Destination: &x.redis.KeyPrefix,
		},
	}
}

func (x Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("redis_addr", x.redis.Addr),
	)
}

// Configure creates the partner cache. Close releases it.
func (x *Cache) Configure(ctx context.Context) (interfaces.PartnerCache, error) {
	switch x.backend {
	case CacheMemory, "":
		logging.Default().Info("Using in-memory partner cache")
		return memory.New(), nil

	case CacheLRU:
		c, err := lru.New(lru.WithSize(x.lruSize), lru.WithEvictCallback(func(key, _ string) {
			logging.Default().Debug("partner evicted from cache", "partner_id", key)
		}))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create lru cache", goerr.V("size", x.lruSize))
		}
		logging.Default().Info("Using lru partner cache", "size", x.lruSize)
		return c, nil

	case CacheRedis:
		if x.redis.Addr == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "redis-addr is required for the redis cache",
				goerr.V(FlagKey, "redis-addr"))
		}
		c, err := redis.New(ctx, x.redis)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis cache")
		}
		x.closeFunc = c.Close
		logging.Default().Info("Using redis partner cache", "addr", x.redis.Addr)
		return c, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid cache backend", goerr.V(BackendKey, x.backend))
	}
}

// Close releases the cache connection, if any
func (x *Cache) Close() error {
	if x.closeFunc == nil {
		return nil
	}
	return x.closeFunc()
}
