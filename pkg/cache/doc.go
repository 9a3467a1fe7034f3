// Package cache holds the PartnerCache backends: memory, lru and redis.
package cache
