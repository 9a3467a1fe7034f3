package slack_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/service/slack"
)

type fakeService struct {
	mu        sync.Mutex
	channels  map[string]*slack.Channel
	created   []string
	createErr error
	invited   map[string][]string
	removed   map[string][]string
}

func newFakeService(existing ...*slack.Channel) *fakeService {
	f := &fakeService{
		channels: make(map[string]*slack.Channel),
		invited:  make(map[string][]string),
		removed:  make(map[string][]string),
	}
	for _, ch := range existing {
		f.channels[ch.Name] = ch
	}
	return f
}

func (f *fakeService) FindChannelByName(_ context.Context, name string) (*slack.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[name], nil
}

func (f *fakeService) CreateChannel(_ context.Context, name string, private bool) (*slack.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	ch := &slack.Channel{ID: "NEW-" + name, Name: name, IsPrivate: private}
	f.channels[name] = ch
	f.created = append(f.created, name)
	return ch, nil
}

func (f *fakeService) LookupUserByEmail(_ context.Context, email string) (*slack.User, error) {
	return &slack.User{ID: "U-" + email, Email: email}, nil
}

func (f *fakeService) InviteUser(_ context.Context, channelID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invited[channelID] = append(f.invited[channelID], userID)
	return nil
}

func (f *fakeService) RemoveUser(_ context.Context, channelID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed[channelID] = append(f.removed[channelID], userID)
	return nil
}

func TestProvisionerFindOrCreateChannel(t *testing.T) {
	partner := &model.Partner{PartnerID: "p-1", Name: "Payoff"}
	ctx := context.Background()

	t.Run("existing channel is retrieved", func(t *testing.T) {
		svc := newFakeService(&slack.Channel{ID: "C1", Name: "p-payoff"})
		p := slack.NewProvisioner(svc)

		got, err := p.FindOrCreateChannel(ctx, partner, types.ChannelKindGeneral, types.JobTypeOffboarding)
		gt.NoError(t, err).Required()
		gt.Value(t, *got).Equal(model.ProvisionedChannel{ChannelID: "C1", ChannelName: "p-payoff", Type: types.ChannelProvisionRetrieve})
		gt.Array(t, svc.created).Length(0)
	})

	t.Run("missing channel is created for onboarding", func(t *testing.T) {
		svc := newFakeService()
		p := slack.NewProvisioner(svc)

		got, err := p.FindOrCreateChannel(ctx, partner, types.ChannelKindInternal, types.JobTypeOnboarding)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ChannelName).Equal("p-payoff-int")
		gt.Value(t, got.Type).Equal(types.ChannelProvisionCreate)
		gt.B(t, svc.channels["p-payoff-int"].IsPrivate).True()
	})

	t.Run("missing channel is not created for offboarding", func(t *testing.T) {
		svc := newFakeService()
		p := slack.NewProvisioner(svc)

		got, err := p.FindOrCreateChannel(ctx, partner, types.ChannelKindGeneral, types.JobTypeOffboarding)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
		gt.Array(t, svc.created).Length(0)
	})

	t.Run("partner ID is used when name is empty", func(t *testing.T) {
		svc := newFakeService()
		p := slack.NewProvisioner(svc, slack.WithChannelNaming(slack.ChannelNaming{Prefix: "partner"}))

		got, err := p.FindOrCreateChannel(ctx, &model.Partner{PartnerID: "XYZ"}, types.ChannelKindGeneral, types.JobTypeOnboarding)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ChannelName).Equal("partner-xyz")
	})

	t.Run("create failure is returned", func(t *testing.T) {
		svc := newFakeService()
		svc.createErr = errors.New("restricted_action")
		p := slack.NewProvisioner(svc)

		_, err := p.FindOrCreateChannel(ctx, partner, types.ChannelKindGeneral, types.JobTypeOnboarding)
		gt.Error(t, err)
	})

	t.Run("invalid kind is rejected", func(t *testing.T) {
		p := slack.NewProvisioner(newFakeService())
		_, err := p.FindOrCreateChannel(ctx, partner, types.ChannelKind("other"), types.JobTypeOnboarding)
		gt.Error(t, err)
	})
}

func TestProvisionerMembership(t *testing.T) {
	svc := newFakeService()
	p := slack.NewProvisioner(svc)
	ctx := context.Background()

	userID, err := p.LookupUserByEmail(ctx, "ada@example.com")
	gt.NoError(t, err).Required()
	gt.Value(t, userID).Equal("U-ada@example.com")

	gt.NoError(t, p.InviteUser(ctx, "C1", userID))
	gt.NoError(t, p.RemoveUser(ctx, "C2", userID))
	gt.Value(t, svc.invited["C1"]).Equal([]string{userID})
	gt.Value(t, svc.removed["C2"]).Equal([]string{userID})
}
