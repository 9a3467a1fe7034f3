package interfaces

import (
	"context"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

// ChannelProvisioner finds or creates the chat channel of a partner
type ChannelProvisioner interface {
	// FindOrCreateChannel returns the channel of the given kind. Whether a
	// missing channel is created depends on the job type; a nil result means
	// no channel exists and none was created.
	FindOrCreateChannel(ctx context.Context, partner *model.Partner, kind types.ChannelKind, jobType types.JobType) (*model.ProvisionedChannel, error)
}

// ChannelMembership adds and removes fellows from partner channels
type ChannelMembership interface {
	// LookupUserByEmail returns the chat user ID of the given address
	LookupUserByEmail(ctx context.Context, email string) (string, error)
	InviteUser(ctx context.Context, channelID, userID string) error
	RemoveUser(ctx context.Context, channelID, userID string) error
}
