package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	cachememory "github.com/partnerflow/partnerflow/pkg/cache/memory"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/repository/memory"
	"github.com/partnerflow/partnerflow/pkg/usecase"
)

type automationFixture struct {
	repo        *memory.Memory
	allocations *fakeAllocations
	provisioner *fakeProvisioner
	membership  *fakeMembership
	noko        *fakeNoko
	mailer      *fakeMailer
	now         time.Time
	uc          *usecase.UseCases
}

func newAutomationFixture(t *testing.T) *automationFixture {
	t.Helper()
	f := &automationFixture{
		repo:        memory.New(),
		allocations: newFakeAllocations(),
		provisioner: newFakeProvisioner(),
		membership:  newFakeMembership(),
		noko:        newFakeNoko(),
		mailer:      &fakeMailer{},
		now:         time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	f.allocations.partners["P-1"] = &model.Partner{PartnerID: "P-1", Name: "Payoff", Location: "Lagos"}

	locations := model.NewLocationRegistry()
	locations.Register(&model.LocationEntry{
		Name:         "Lagos",
		SOPRecipient: []string{"sop-lagos@example.com"},
		ITRecipient:  []string{"it-lagos@example.com", "it-ops@example.com"},
	})

	f.uc = usecase.New(f.repo,
		usecase.WithPartnerCache(cachememory.New()),
		usecase.WithAllocations(f.allocations),
		usecase.WithChannelProvisioner(f.provisioner),
		usecase.WithChannelMembership(f.membership),
		usecase.WithNoko(f.noko),
		usecase.WithMailer(f.mailer),
		usecase.WithLocations(locations),
		usecase.WithClock(func() time.Time { return f.now }),
	)
	return f
}

func samplePlacement(id string) *model.Placement {
	return &model.Placement{
		ID:         id,
		ClientID:   "P-1",
		ClientName: "Payoff Inc",
		Fellow:     model.Fellow{ID: "F-1", Name: "Ada Lovelace", Email: "ada@example.com"},
		EndDate:    "2024-06-30",
	}
}

func TestAutomationRunOnboarding(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()

	a, err := f.uc.Automation.Run(ctx, samplePlacement("PL-1"), types.JobTypeOnboarding)
	gt.NoError(t, err).Required()

	gt.Number(t, a.ID).NotEqual(0)
	gt.Value(t, a.PartnerName).Equal("Payoff")
	gt.Value(t, a.SlackStatus()).Equal(types.ActivityStatusSuccess)
	gt.Value(t, a.NokoStatus()).Equal(types.ActivityStatusSuccess)
	gt.Array(t, a.EmailActivities).Length(0)
	gt.Bool(t, a.Succeeded()).True()

	// two provisioning records and two invites
	gt.Array(t, a.SlackActivities).Length(4)
	gt.Value(t, a.SlackActivities[0].Type).Equal(types.SlackActivityCreate)
	gt.Value(t, a.SlackActivities[1].Type).Equal(types.SlackActivityRetrieve)
	gt.Value(t, a.SlackActivities[2].Type).Equal(types.SlackActivityInvite)
	gt.Value(t, f.membership.invited["C-GEN"]).Equal([]string{"U-ADA"})
	gt.Value(t, f.membership.invited["C-INT"]).Equal([]string{"U-ADA"})

	gt.Array(t, a.NokoActivities).Length(2)
	gt.Value(t, a.NokoActivities[0].StatusMessage).Equal("Payoff noko project created")
	gt.Value(t, a.NokoActivities[1].NokoUserID).Equal(int64(42))
	gt.Value(t, f.noko.assigned["ada@example.com"]).Equal([]int64{1})

	stored, err := f.repo.Automation().Get(ctx, a.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, stored.SlackActivities).Length(4)
}

func TestAutomationRunOffboarding(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()

	a, err := f.uc.Automation.Run(ctx, samplePlacement("PL-2"), types.JobTypeOffboarding)
	gt.NoError(t, err).Required()

	gt.Bool(t, a.Succeeded()).True()
	gt.Array(t, a.NokoActivities).Length(0)
	gt.Value(t, f.membership.removed["C-GEN"]).Equal([]string{"U-ADA"})
	gt.Value(t, a.SlackActivities[2].Type).Equal(types.SlackActivityKick)

	gt.Array(t, f.mailer.sent).Length(2).Required()
	gt.Value(t, f.mailer.sent[0].Kind).Equal(types.EmailActivitySOPOffboarding)
	gt.Value(t, f.mailer.sent[0].To).Equal([]string{"sop-lagos@example.com"})
	gt.String(t, f.mailer.sent[0].Body).Contains("Ada Lovelace")
	gt.String(t, f.mailer.sent[0].Body).Contains("2024-06-30")
	gt.Value(t, f.mailer.sent[1].Kind).Equal(types.EmailActivityITOffboarding)

	gt.Value(t, a.EmailActivities[1].Recipient).Equal("it-lagos@example.com, it-ops@example.com")
	gt.String(t, a.EmailActivities[0].Subject).Contains("Ada Lovelace")
}

func TestAutomationRecordsFailures(t *testing.T) {
	f := newAutomationFixture(t)
	f.membership.inviteErr = errors.New("not_in_channel")
	f.noko.assignErr = errors.New("noko user not found")
	ctx := context.Background()

	a, err := f.uc.Automation.Run(ctx, samplePlacement("PL-3"), types.JobTypeOnboarding)
	gt.NoError(t, err).Required()

	gt.Value(t, a.SlackStatus()).Equal(types.ActivityStatusFailure)
	gt.Value(t, a.NokoStatus()).Equal(types.ActivityStatusFailure)
	gt.Bool(t, a.Succeeded()).False()
	gt.Value(t, a.SlackActivities[2].StatusMessage).Equal("not_in_channel")

	t.Run("retry runs failed channels again", func(t *testing.T) {
		f.membership.inviteErr = nil
		f.noko.assignErr = nil

		retried, err := f.uc.Automation.Retry(ctx, a.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, retried.Succeeded()).True()
		gt.Array(t, retried.SlackActivities).Length(4)
		gt.Array(t, retried.NokoActivities).Length(2)
		gt.Value(t, retried.NokoActivities[0].StatusMessage).Equal("Payoff noko project already exist")

		// partner comes from the cache on retry
		gt.Number(t, f.allocations.calls()).Equal(1)
	})

	t.Run("retry of unknown automation", func(t *testing.T) {
		_, err := f.uc.Automation.Retry(ctx, 999)
		gt.Error(t, err).Is(model.ErrAutomationNotFound)
	})
}

func TestAutomationRetryOffboardingKeepsEndDate(t *testing.T) {
	f := newAutomationFixture(t)
	f.mailer.sendErr = errors.New("broker unavailable")
	ctx := context.Background()

	a, err := f.uc.Automation.Run(ctx, samplePlacement("PL-5"), types.JobTypeOffboarding)
	gt.NoError(t, err).Required()
	gt.Value(t, a.EmailStatus()).Equal(types.ActivityStatusFailure)
	gt.Value(t, a.EndDate).Equal("2024-06-30")
	gt.Array(t, f.mailer.sent).Length(0)

	f.mailer.sendErr = nil
	retried, err := f.uc.Automation.Retry(ctx, a.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, retried.EmailStatus()).Equal(types.ActivityStatusSuccess)

	gt.Array(t, f.mailer.sent).Length(2).Required()
	for _, mail := range f.mailer.sent {
		gt.String(t, mail.Body).Contains("End date: 2024-06-30")
	}
}

func TestAutomationMissingLocation(t *testing.T) {
	f := newAutomationFixture(t)
	f.allocations.partners["P-1"].Location = "Nairobi"

	a, err := f.uc.Automation.Run(context.Background(), samplePlacement("PL-4"), types.JobTypeOffboarding)
	gt.NoError(t, err).Required()
	gt.Array(t, a.EmailActivities).Length(2)
	gt.Value(t, a.EmailStatus()).Equal(types.ActivityStatusFailure)
	gt.Array(t, f.mailer.sent).Length(0)
}

func TestProcessNewPlacements(t *testing.T) {
	f := newAutomationFixture(t)
	f.allocations.placements[usecase.DefaultOnboardingStatus] = []*model.Placement{
		{ID: "PL-new", ClientID: "P-1", CreatedAt: f.now.Add(-time.Hour), Fellow: model.Fellow{Email: "ada@example.com"}},
		{ID: "PL-unknown-partner", ClientID: "P-404", CreatedAt: f.now.Add(-time.Hour)},
		{ID: "PL-old", ClientID: "P-1", CreatedAt: f.now.Add(-48 * time.Hour)},
	}

	done, err := f.uc.Automation.ProcessNewPlacements(context.Background(), types.JobTypeOnboarding)
	gt.NoError(t, err).Required()
	gt.Array(t, done).Length(1).Required()
	gt.Value(t, done[0].PlacementID).Equal("PL-new")

	_, err = f.uc.Automation.ProcessNewPlacements(context.Background(), types.JobType("other"))
	gt.Error(t, err).Is(usecase.ErrInvalidJobType)
}

func TestAutomationListAndStats(t *testing.T) {
	f := newAutomationFixture(t)
	ctx := context.Background()

	for i, jobType := range []types.JobType{types.JobTypeOnboarding, types.JobTypeOnboarding, types.JobTypeOffboarding} {
		_, err := f.uc.Automation.Run(ctx, samplePlacement("PL-"+string(rune('a'+i))), jobType)
		gt.NoError(t, err).Required()
	}
	f.membership.inviteErr = errors.New("boom")
	_, err := f.uc.Automation.Run(ctx, samplePlacement("PL-z"), types.JobTypeOnboarding)
	gt.NoError(t, err).Required()

	r := model.DateRange{To: time.Now().Add(time.Minute)}

	t.Run("list is paginated", func(t *testing.T) {
		views, pagination, err := f.uc.Automation.List(ctx, r, "", model.NewPage(3, 1))
		gt.NoError(t, err).Required()
		gt.Array(t, views).Length(3)
		gt.Value(t, pagination.DataCount).Equal(4)
		gt.Value(t, pagination.NumberOfPages).Equal(2)
		gt.Value(t, *pagination.NextPage).Equal(2)
		gt.Value(t, pagination.PrevPage).Nil()
	})

	t.Run("list filters by type", func(t *testing.T) {
		views, pagination, err := f.uc.Automation.List(ctx, r, types.JobTypeOffboarding, model.NewPage(0, 0))
		gt.NoError(t, err).Required()
		gt.Array(t, views).Length(1)
		gt.Value(t, pagination.DataCount).Equal(1)
	})

	t.Run("stats per job type", func(t *testing.T) {
		stats, err := f.uc.Automation.Stats(ctx, r)
		gt.NoError(t, err).Required()
		gt.Value(t, *stats[types.JobTypeOnboarding]).Equal(model.AutomationStats{Total: 3, Success: 2, Failure: 1})
		gt.Value(t, *stats[types.JobTypeOffboarding]).Equal(model.AutomationStats{Total: 1, Success: 1, Failure: 0})
	})
}
