package slack

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/partnerflow/partnerflow/pkg/utils/metrics"
)

// Provisioner finds or creates partner channels and manages their members
type Provisioner struct {
	svc    Service
	naming ChannelNaming
}

var (
	_ interfaces.ChannelProvisioner = (*Provisioner)(nil)
	_ interfaces.ChannelMembership  = (*Provisioner)(nil)
)

// ProvisionerOption configures a Provisioner
type ProvisionerOption func(*Provisioner)

// WithChannelNaming overrides the default channel naming scheme
func WithChannelNaming(naming ChannelNaming) ProvisionerOption {
	return func(p *Provisioner) {
		p.naming = naming
	}
}

// NewProvisioner creates a Provisioner on top of a Slack service
func NewProvisioner(svc Service, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		svc:    svc,
		naming: DefaultChannelNaming(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FindOrCreateChannel returns the existing channel of the partner. A missing
// channel is created for onboarding only; for offboarding nil is returned.
// Internal channels are private.
func (p *Provisioner) FindOrCreateChannel(ctx context.Context, partner *model.Partner, kind types.ChannelKind, jobType types.JobType) (*model.ProvisionedChannel, error) {
	if !kind.IsValid() {
		return nil, goerr.New("invalid channel kind", goerr.V("kind", kind))
	}

	name := p.naming.PartnerChannelName(partner.Name, partner.PartnerID, kind)
	logger := logging.From(ctx).With("partner_id", partner.PartnerID, "channel_name", name, "kind", kind)

	ch, err := p.svc.FindChannelByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up partner channel", goerr.V("partner_id", partner.PartnerID))
	}
	if ch != nil {
		metrics.ChannelProvisionTotal.WithLabelValues(kind.String(), types.ChannelProvisionRetrieve.String()).Inc()
		return &model.ProvisionedChannel{
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			Type:        types.ChannelProvisionRetrieve,
		}, nil
	}

	if jobType != types.JobTypeOnboarding {
		logger.Info("partner channel not found, not created for job type", "job_type", jobType)
		return nil, nil
	}

	created, err := p.svc.CreateChannel(ctx, name, kind == types.ChannelKindInternal)
	if err != nil {
		// another automation may have created it in the meantime
		if strings.Contains(err.Error(), "name_taken") {
			if ch, findErr := p.svc.FindChannelByName(ctx, name); findErr == nil && ch != nil {
				metrics.ChannelProvisionTotal.WithLabelValues(kind.String(), types.ChannelProvisionRetrieve.String()).Inc()
				return &model.ProvisionedChannel{
					ChannelID:   ch.ID,
					ChannelName: ch.Name,
					Type:        types.ChannelProvisionRetrieve,
				}, nil
			}
		}
		return nil, goerr.Wrap(err, "failed to create partner channel", goerr.V("partner_id", partner.PartnerID))
	}

	logger.Info("partner channel created", "channel_id", created.ID)
	metrics.ChannelProvisionTotal.WithLabelValues(kind.String(), types.ChannelProvisionCreate.String()).Inc()
	return &model.ProvisionedChannel{
		ChannelID:   created.ID,
		ChannelName: created.Name,
		Type:        types.ChannelProvisionCreate,
	}, nil
}

// LookupUserByEmail returns the Slack user ID of the address
func (p *Provisioner) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	user, err := p.svc.LookupUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// InviteUser adds the user to the channel
func (p *Provisioner) InviteUser(ctx context.Context, channelID, userID string) error {
	return p.svc.InviteUser(ctx, channelID, userID)
}

// RemoveUser removes the user from the channel
func (p *Provisioner) RemoveUser(ctx context.Context, channelID, userID string) error {
	return p.svc.RemoveUser(ctx, channelID, userID)
}
