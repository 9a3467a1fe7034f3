package usecase

import (
	"time"

	"github.com/partnerflow/partnerflow/pkg/cache/memory"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/service/mailer"
	"github.com/partnerflow/partnerflow/pkg/service/report"
)

// Default placement statuses polled for each job type
const (
	DefaultOnboardingStatus  = "External Engagements - Standard"
	DefaultOffboardingStatus = "Rolled Off"
)

// DefaultPlacementWindow is how far back new placements are looked for
const DefaultPlacementWindow = 24 * time.Hour

type UseCases struct {
	repo        interfaces.Repository
	cache       interfaces.PartnerCache
	allocations interfaces.AllocationsClient
	provisioner interfaces.ChannelProvisioner
	membership  interfaces.ChannelMembership
	noko        interfaces.NokoClient
	mailer      interfaces.Mailer
	reports     interfaces.ReportStore
	locations   *model.LocationRegistry
	window      time.Duration
	statuses    map[types.JobType]string
	now         func() time.Time

	Partner    *PartnerUseCase
	Placement  *PlacementUseCase
	Automation *AutomationUseCase
	Dashboard  *DashboardUseCase
	Report     *ReportUseCase
	Auth       AuthUseCaseInterface
}

type Option func(*UseCases)

// WithPartnerCache sets the fast store in front of the partner repository
func WithPartnerCache(cache interfaces.PartnerCache) Option {
	return func(uc *UseCases) {
		uc.cache = cache
	}
}

func WithAllocations(client interfaces.AllocationsClient) Option {
	return func(uc *UseCases) {
		uc.allocations = client
	}
}

func WithChannelProvisioner(p interfaces.ChannelProvisioner) Option {
	return func(uc *UseCases) {
		uc.provisioner = p
	}
}

func WithChannelMembership(m interfaces.ChannelMembership) Option {
	return func(uc *UseCases) {
		uc.membership = m
	}
}

func WithNoko(client interfaces.NokoClient) Option {
	return func(uc *UseCases) {
		uc.noko = client
	}
}

func WithMailer(m interfaces.Mailer) Option {
	return func(uc *UseCases) {
		uc.mailer = m
	}
}

func WithReportStore(store interfaces.ReportStore) Option {
	return func(uc *UseCases) {
		uc.reports = store
	}
}

// WithLocations sets the offboarding mail recipients per partner location
func WithLocations(registry *model.LocationRegistry) Option {
	return func(uc *UseCases) {
		uc.locations = registry
	}
}

// WithPlacementWindow sets how recent a placement must be to count as new
func WithPlacementWindow(window time.Duration) Option {
	return func(uc *UseCases) {
		uc.window = window
	}
}

// WithPlacementStatus sets the placement status polled for a job type
func WithPlacementStatus(jobType types.JobType, status string) Option {
	return func(uc *UseCases) {
		uc.statuses[jobType] = status
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		cache:     memory.New(),
		mailer:    mailer.NewLogger(),
		reports:   report.NewMemory(),
		locations: model.NewLocationRegistry(),
		window:    DefaultPlacementWindow,
		statuses: map[types.JobType]string{
			types.JobTypeOnboarding:  DefaultOnboardingStatus,
			types.JobTypeOffboarding: DefaultOffboardingStatus,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase()
	}

	uc.Partner = NewPartnerUseCase(repo, uc.cache, uc.allocations, uc.provisioner)
	uc.Placement = NewPlacementUseCase(uc.allocations, uc.window, uc.now)
	uc.Automation = &AutomationUseCase{
		repo:       repo,
		partners:   uc.Partner,
		placements: uc.Placement,
		membership: uc.membership,
		noko:       uc.noko,
		mailer:     uc.mailer,
		locations:  uc.locations,
		statuses:   uc.statuses,
	}
	uc.Dashboard = NewDashboardUseCase(repo, uc.now)
	uc.Report = NewReportUseCase(repo, uc.reports, uc.now)

	return uc
}
