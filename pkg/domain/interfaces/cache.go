package interfaces

import (
	"context"
)

// PartnerCache is the fast key-value store in front of PartnerRepository.
// Entries never expire; Set overwrites.
type PartnerCache interface {
	// Get returns the cached value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
