package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

type partnerRepository struct {
	mu       sync.RWMutex
	partners map[string]*model.Partner
}

func newPartnerRepository() *partnerRepository {
	return &partnerRepository{
		partners: make(map[string]*model.Partner),
	}
}

func (r *partnerRepository) FindOne(ctx context.Context, partnerID string) (*model.Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.partners[partnerID]
	if !exists {
		return nil, goerr.Wrap(model.ErrPartnerNotFound, "partner not found", goerr.V("partner_id", partnerID))
	}
	return p.Clone(), nil
}

func (r *partnerRepository) Upsert(ctx context.Context, partner *model.Partner) (*model.Partner, error) {
	if err := partner.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := partner.Clone()
	stored.UpdatedAt = now
	if existing, exists := r.partners[partner.PartnerID]; exists {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}

	r.partners[stored.PartnerID] = stored
	return stored.Clone(), nil
}
