package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/repository/memory"
)

type provisionCall struct {
	partnerID string
	kind      types.ChannelKind
	jobType   types.JobType
}

// fakeProvisioner returns a fixed channel per kind and records every call
type fakeProvisioner struct {
	mu       sync.Mutex
	calls    []provisionCall
	channels map[types.ChannelKind]*model.ProvisionedChannel
	err      error
	gate     chan struct{}
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		channels: map[types.ChannelKind]*model.ProvisionedChannel{
			types.ChannelKindGeneral:  {ChannelID: "C-GEN", ChannelName: "p-payoff", Type: types.ChannelProvisionCreate},
			types.ChannelKindInternal: {ChannelID: "C-INT", ChannelName: "p-payoff-int", Type: types.ChannelProvisionRetrieve},
		},
	}
}

func (f *fakeProvisioner) FindOrCreateChannel(ctx context.Context, partner *model.Partner, kind types.ChannelKind, jobType types.JobType) (*model.ProvisionedChannel, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, provisionCall{partnerID: partner.PartnerID, kind: kind, jobType: jobType})
	if f.err != nil {
		return nil, f.err
	}
	ch := f.channels[kind]
	if ch == nil {
		return nil, nil
	}
	copied := *ch
	return &copied, nil
}

func (f *fakeProvisioner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeProvisioner) kinds() map[types.ChannelKind]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[types.ChannelKind]int)
	for _, c := range f.calls {
		result[c.kind]++
	}
	return result
}

// fakeAllocations serves partners and placements from memory
type fakeAllocations struct {
	mu           sync.Mutex
	partners     map[string]*model.Partner
	placements   map[string][]*model.Placement
	partnerCalls int32
	err          error
}

func newFakeAllocations() *fakeAllocations {
	return &fakeAllocations{
		partners:   make(map[string]*model.Partner),
		placements: make(map[string][]*model.Placement),
	}
}

func (f *fakeAllocations) GetPartner(ctx context.Context, partnerID string) (*model.Partner, error) {
	atomic.AddInt32(&f.partnerCalls, 1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.partners[partnerID]
	if !ok {
		return nil, errors.Join(model.ErrUpstreamFetch, errors.New("404 Not Found"))
	}
	return p.Clone(), nil
}

func (f *fakeAllocations) ListPlacements(ctx context.Context, status string) ([]*model.Placement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.placements[status], nil
}

func (f *fakeAllocations) calls() int {
	return int(atomic.LoadInt32(&f.partnerCalls))
}

// countingCache wraps a cache and counts calls, optionally failing writes
type countingCache struct {
	interfaces.PartnerCache
	gets     int32
	sets     int32
	setErr   error
	getErr   error
	lastSets sync.Map
}

func (c *countingCache) Get(ctx context.Context, key string) (string, bool, error) {
	atomic.AddInt32(&c.gets, 1)
	if c.getErr != nil {
		return "", false, c.getErr
	}
	return c.PartnerCache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key, value string) error {
	atomic.AddInt32(&c.sets, 1)
	if c.setErr != nil {
		return c.setErr
	}
	c.lastSets.Store(key, value)
	return c.PartnerCache.Set(ctx, key, value)
}

// failingRepo is a memory repository whose partner store can be made to fail
type failingRepo struct {
	*memory.Memory
	partner *failingPartnerRepo
}

type failingPartnerRepo struct {
	interfaces.PartnerRepository
	upsertErr  error
	findOneErr error
	upserts    int32
}

func newFailingRepo() *failingRepo {
	mem := memory.New()
	return &failingRepo{
		Memory:  mem,
		partner: &failingPartnerRepo{PartnerRepository: mem.Partner()},
	}
}

func (r *failingRepo) Partner() interfaces.PartnerRepository {
	return r.partner
}

func (p *failingPartnerRepo) FindOne(ctx context.Context, partnerID string) (*model.Partner, error) {
	if p.findOneErr != nil {
		return nil, p.findOneErr
	}
	return p.PartnerRepository.FindOne(ctx, partnerID)
}

func (p *failingPartnerRepo) Upsert(ctx context.Context, partner *model.Partner) (*model.Partner, error) {
	atomic.AddInt32(&p.upserts, 1)
	if p.upsertErr != nil {
		return nil, p.upsertErr
	}
	return p.PartnerRepository.Upsert(ctx, partner)
}

// fakeMembership records invites and removals
type fakeMembership struct {
	mu        sync.Mutex
	users     map[string]string
	invited   map[string][]string
	removed   map[string][]string
	inviteErr error
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{
		users:   map[string]string{"ada@example.com": "U-ADA"},
		invited: make(map[string][]string),
		removed: make(map[string][]string),
	}
}

func (f *fakeMembership) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	id, ok := f.users[email]
	if !ok {
		return "", errors.New("users_not_found")
	}
	return id, nil
}

func (f *fakeMembership) InviteUser(ctx context.Context, channelID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inviteErr != nil {
		return f.inviteErr
	}
	f.invited[channelID] = append(f.invited[channelID], userID)
	return nil
}

func (f *fakeMembership) RemoveUser(ctx context.Context, channelID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed[channelID] = append(f.removed[channelID], userID)
	return nil
}

// fakeNoko keeps projects by name
type fakeNoko struct {
	mu        sync.Mutex
	projects  map[string]int64
	assigned  map[string][]int64
	assignErr error
}

func newFakeNoko() *fakeNoko {
	return &fakeNoko{
		projects: make(map[string]int64),
		assigned: make(map[string][]int64),
	}
}

func (f *fakeNoko) GetOrCreateProject(ctx context.Context, name string) (*interfaces.NokoProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.projects[name]; ok {
		return &interfaces.NokoProject{ID: id, Name: name}, nil
	}
	id := int64(len(f.projects) + 1)
	f.projects[name] = id
	return &interfaces.NokoProject{ID: id, Name: name, Created: true}, nil
}

func (f *fakeNoko) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	return 42, nil
}

func (f *fakeNoko) AssignProject(ctx context.Context, email string, projectID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return 0, f.assignErr
	}
	f.assigned[email] = append(f.assigned[email], projectID)
	return 42, nil
}

// fakeMailer collects sent mails
type fakeMailer struct {
	mu      sync.Mutex
	sent    []*model.Mail
	sendErr error
}

func (f *fakeMailer) Send(ctx context.Context, mail *model.Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, mail)
	return nil
}
