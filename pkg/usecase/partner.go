package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/partnerflow/partnerflow/pkg/utils/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// PartnerUseCase resolves partners through the cache, the partner store and
// the allocations service, provisioning their channels on first sight.
type PartnerUseCase struct {
	repo        interfaces.Repository
	cache       interfaces.PartnerCache
	allocations interfaces.AllocationsClient
	provisioner interfaces.ChannelProvisioner
	group       singleflight.Group
}

func NewPartnerUseCase(repo interfaces.Repository, cache interfaces.PartnerCache, allocations interfaces.AllocationsClient, provisioner interfaces.ChannelProvisioner) *PartnerUseCase {
	return &PartnerUseCase{
		repo:        repo,
		cache:       cache,
		allocations: allocations,
		provisioner: provisioner,
	}
}

// Resolve returns the partner with its channel bundle. A cached snapshot is
// returned without any other I/O. Otherwise the partner is read from the store
// or the allocations service and, unless it already carries channels, both
// channels are provisioned, the merged record is upserted and the stored row
// is cached. Concurrent calls for the same uncached partner share one run.
func (uc *PartnerUseCase) Resolve(ctx context.Context, partnerID string, jobType types.JobType) (*model.Partner, error) {
	if partnerID == "" {
		return nil, goerr.Wrap(model.ErrInvalidPartner, "partner ID is required")
	}
	if !jobType.IsValid() {
		return nil, goerr.Wrap(ErrInvalidJobType, "cannot resolve partner", goerr.V(JobTypeKey, jobType))
	}

	if cached, ok, err := uc.fromCache(ctx, partnerID); err != nil {
		return nil, err
	} else if ok {
		metrics.PartnerResolveTotal.WithLabelValues(metrics.SourceCache).Inc()
		return cached, nil
	}

	v, err, shared := uc.group.Do(partnerID, func() (any, error) {
		return uc.resolveUncached(ctx, partnerID, jobType)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.From(ctx).Debug("partner resolve shared", PartnerIDKey, partnerID)
	}

	return v.(*model.Partner).Clone(), nil
}

func (uc *PartnerUseCase) fromCache(ctx context.Context, partnerID string) (*model.Partner, bool, error) {
	raw, ok, err := uc.cache.Get(ctx, partnerID)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to read partner cache", goerr.V(PartnerIDKey, partnerID))
	}
	if !ok {
		return nil, false, nil
	}

	var partner model.Partner
	if err := json.Unmarshal([]byte(raw), &partner); err != nil {
		return nil, false, goerr.Wrap(err, "failed to decode cached partner", goerr.V(PartnerIDKey, partnerID))
	}
	return &partner, true, nil
}

func (uc *PartnerUseCase) resolveUncached(ctx context.Context, partnerID string, jobType types.JobType) (*model.Partner, error) {
	partner, err := uc.retrievePartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	if partner.HasSlackChannels() {
		if err := uc.fill(ctx, partner); err != nil {
			return nil, err
		}
		return partner, nil
	}

	general, internal, err := uc.provision(ctx, partner, jobType)
	if err != nil {
		return nil, err
	}
	partner.SlackChannels = model.NewChannelBundle(general, internal, partner)

	saved, err := uc.repo.Partner().Upsert(ctx, partner)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to upsert partner", goerr.V(PartnerIDKey, partnerID))
	}

	if err := uc.fill(ctx, saved); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("partner channels provisioned",
		PartnerIDKey, saved.PartnerID,
		JobTypeKey, jobType,
		"general", saved.SlackChannels.General.ChannelName,
		"internal", saved.SlackChannels.Internal.ChannelName,
	)
	return saved, nil
}

// retrievePartner reads the partner from the store, falling back to the
// allocations service when the store has no record
func (uc *PartnerUseCase) retrievePartner(ctx context.Context, partnerID string) (*model.Partner, error) {
	partner, err := uc.repo.Partner().FindOne(ctx, partnerID)
	if err == nil {
		metrics.PartnerResolveTotal.WithLabelValues(metrics.SourceStore).Inc()
		return partner, nil
	}
	if !errors.Is(err, model.ErrPartnerNotFound) {
		return nil, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to find partner", goerr.V(PartnerIDKey, partnerID))
	}

	if uc.allocations == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "allocations client is not configured", goerr.V(PartnerIDKey, partnerID))
	}
	partner, err = uc.allocations.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch partner", goerr.V(PartnerIDKey, partnerID))
	}
	if partner.PartnerID == "" {
		partner.PartnerID = partnerID
	}

	metrics.PartnerResolveTotal.WithLabelValues(metrics.SourceRemote).Inc()
	return partner, nil
}

// provision runs the general and internal lookups concurrently. The internal
// channel is only looked up when the partner has no legacy channel.
func (uc *PartnerUseCase) provision(ctx context.Context, partner *model.Partner, jobType types.JobType) (*model.ProvisionedChannel, *model.ProvisionedChannel, error) {
	if uc.provisioner == nil {
		return nil, nil, goerr.Wrap(ErrNotConfigured, "channel provisioner is not configured", goerr.V(PartnerIDKey, partner.PartnerID))
	}

	var general, internal *model.ProvisionedChannel
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		ch, err := uc.provisioner.FindOrCreateChannel(egCtx, partner, types.ChannelKindGeneral, jobType)
		if err != nil {
			return goerr.Wrap(err, "failed to provision general channel", goerr.V(PartnerIDKey, partner.PartnerID))
		}
		general = ch
		return nil
	})

	if partner.ChannelID == "" {
		eg.Go(func() error {
			ch, err := uc.provisioner.FindOrCreateChannel(egCtx, partner, types.ChannelKindInternal, jobType)
			if err != nil {
				return goerr.Wrap(err, "failed to provision internal channel", goerr.V(PartnerIDKey, partner.PartnerID))
			}
			internal = ch
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return general, internal, nil
}

// fill writes the partner snapshot to the cache without expiry
func (uc *PartnerUseCase) fill(ctx context.Context, partner *model.Partner) error {
	raw, err := json.Marshal(partner)
	if err != nil {
		return goerr.Wrap(err, "failed to encode partner", goerr.V(PartnerIDKey, partner.PartnerID))
	}
	if err := uc.cache.Set(ctx, partner.PartnerID, string(raw)); err != nil {
		return goerr.Wrap(err, "failed to write partner cache", goerr.V(PartnerIDKey, partner.PartnerID))
	}
	return nil
}
