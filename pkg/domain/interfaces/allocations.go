package interfaces

import (
	"context"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// AllocationsClient reads partners and placements from the allocations service
type AllocationsClient interface {
	// GetPartner fetches the authoritative partner profile
	GetPartner(ctx context.Context, partnerID string) (*model.Partner, error)

	// ListPlacements returns every placement currently in the given status
	ListPlacements(ctx context.Context, status string) ([]*model.Placement, error)
}
