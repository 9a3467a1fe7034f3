package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

type automationRepository struct {
	mu          sync.RWMutex
	automations map[int64]*model.Automation
	nextID      int64
}

func newAutomationRepository() *automationRepository {
	return &automationRepository{
		automations: make(map[int64]*model.Automation),
		nextID:      1,
	}
}

func (r *automationRepository) Create(ctx context.Context, automation *model.Automation) (*model.Automation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := automation.Clone()
	created.ID = r.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	r.nextID++

	r.automations[created.ID] = created
	return created.Clone(), nil
}

func (r *automationRepository) Update(ctx context.Context, automation *model.Automation) (*model.Automation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.automations[automation.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrAutomationNotFound, "automation not found", goerr.V("id", automation.ID))
	}

	updated := automation.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.automations[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *automationRepository) Get(ctx context.Context, id int64) (*model.Automation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.automations[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrAutomationNotFound, "automation not found", goerr.V("id", id))
	}
	return a.Clone(), nil
}

// matching returns copies of the automations in the filter, newest first
func (r *automationRepository) matching(filter model.AutomationFilter) []*model.Automation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Automation
	for _, a := range r.automations {
		if filter.Matches(a) {
			result = append(result, a.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (r *automationRepository) List(ctx context.Context, filter model.AutomationFilter) ([]*model.Automation, int, error) {
	all := r.matching(filter)
	return paginate(all, filter.Offset, filter.Limit), len(all), nil
}

func (r *automationRepository) UpsellingPartners(ctx context.Context, from, to time.Time, offset, limit int) ([]*model.UpsellingPartner, int, error) {
	ranked := model.RankUpsellingPartners(r.matching(model.AutomationFilter{From: from, To: to}))
	return paginate(ranked, offset, limit), len(ranked), nil
}

func (r *automationRepository) PartnerStats(ctx context.Context, from, to time.Time) (*model.PartnerStats, error) {
	return model.CountPartnerStats(r.matching(model.AutomationFilter{From: from, To: to})), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
