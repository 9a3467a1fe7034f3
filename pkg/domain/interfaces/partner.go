package interfaces

import (
	"context"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// PartnerRepository is the durable store of partner records
type PartnerRepository interface {
	// FindOne retrieves a partner by ID. Returns an error wrapping
	// model.ErrPartnerNotFound when no record exists.
	FindOne(ctx context.Context, partnerID string) (*model.Partner, error)

	// Upsert inserts or replaces the partner keyed by PartnerID and returns
	// the row as persisted, including store-assigned timestamps
	Upsert(ctx context.Context, partner *model.Partner) (*model.Partner, error)
}
