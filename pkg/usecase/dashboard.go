package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

// DashboardRequest carries the raw dashboard query parameters
type DashboardRequest struct {
	StartDate string
	EndDate   string
	Page      model.Page
}

// DashboardResult is the outcome of a dashboard query. Pagination is nil for
// unpaginated queries.
type DashboardResult struct {
	Data       any
	Pagination *model.Pagination
}

type DashboardUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewDashboardUseCase(repo interfaces.Repository, now func() time.Time) *DashboardUseCase {
	return &DashboardUseCase{repo: repo, now: now}
}

// Query validates the date filters and then runs the selected aggregation.
// Malformed dates fail with model.ErrInvalidDateFormat before any query runs.
func (uc *DashboardUseCase) Query(ctx context.Context, query types.DashboardQuery, req DashboardRequest) (*DashboardResult, error) {
	r, err := model.NewDateRange(req.StartDate, req.EndDate, uc.now())
	if err != nil {
		return nil, err
	}

	switch query {
	case types.DashboardQueryUpselling:
		data, pagination, err := uc.UpsellingPartners(ctx, r, req.Page)
		if err != nil {
			return nil, err
		}
		return &DashboardResult{Data: data, Pagination: &pagination}, nil

	case types.DashboardQueryPartnerStats:
		stats, err := uc.PartnerStats(ctx, r)
		if err != nil {
			return nil, err
		}
		return &DashboardResult{Data: stats}, nil

	default:
		return nil, goerr.New("unknown dashboard query", goerr.V("query", query))
	}
}

// UpsellingPartners ranks partners by onboarding automations in the range
func (uc *DashboardUseCase) UpsellingPartners(ctx context.Context, r model.DateRange, page model.Page) ([]*model.UpsellingPartner, model.Pagination, error) {
	partners, total, err := uc.repo.Automation().UpsellingPartners(ctx, r.From, r.To, page.Offset(), page.Limit)
	if err != nil {
		return nil, model.Pagination{}, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to rank upselling partners")
	}
	if partners == nil {
		partners = []*model.UpsellingPartner{}
	}
	return partners, model.NewPagination(page, total), nil
}

// PartnerStats counts automations and distinct partners in the range
func (uc *DashboardUseCase) PartnerStats(ctx context.Context, r model.DateRange) (*model.PartnerStats, error) {
	stats, err := uc.repo.Automation().PartnerStats(ctx, r.From, r.To)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to count partner stats")
	}
	return stats, nil
}
