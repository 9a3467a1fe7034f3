package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// PlacementUseCase reads recently created placements from the allocations service
type PlacementUseCase struct {
	allocations interfaces.AllocationsClient
	window      time.Duration
	now         func() time.Time
}

func NewPlacementUseCase(allocations interfaces.AllocationsClient, window time.Duration, now func() time.Time) *PlacementUseCase {
	return &PlacementUseCase{
		allocations: allocations,
		window:      window,
		now:         now,
	}
}

// FetchNewPlacements returns the placements in the given status created
// strictly after now minus the configured window. Each call is a snapshot.
func (uc *PlacementUseCase) FetchNewPlacements(ctx context.Context, status string) ([]*model.Placement, error) {
	if uc.allocations == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "allocations client is not configured")
	}

	placements, err := uc.allocations.ListPlacements(ctx, status)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch placements", goerr.V("status", status))
	}

	since := uc.now().Add(-uc.window)
	recent := make([]*model.Placement, 0, len(placements))
	for _, p := range placements {
		if p.CreatedAfter(since) {
			recent = append(recent, p)
		}
	}
	return recent, nil
}
