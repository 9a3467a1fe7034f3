package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/utils/errutil"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/partnerflow/partnerflow/pkg/utils/metrics"
)

const (
	activityChannelSlack = "slack"
	activityChannelEmail = "email"
	activityChannelNoko  = "noko"
)

// AutomationUseCase runs onboarding and offboarding automations for placements
type AutomationUseCase struct {
	repo       interfaces.Repository
	partners   *PartnerUseCase
	placements *PlacementUseCase
	membership interfaces.ChannelMembership
	noko       interfaces.NokoClient
	mailer     interfaces.Mailer
	locations  *model.LocationRegistry
	statuses   map[types.JobType]string
}

// Run resolves the placement's partner, records a new automation and carries
// out every activity of the job type. Activity failures are recorded on the
// automation and never fail the run.
func (uc *AutomationUseCase) Run(ctx context.Context, placement *model.Placement, jobType types.JobType) (*model.Automation, error) {
	partner, err := uc.partners.Resolve(ctx, placement.ClientID, jobType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve partner",
			goerr.V(PlacementIDKey, placement.ID), goerr.V(PartnerIDKey, placement.ClientID))
	}

	created, err := uc.repo.Automation().Create(ctx, model.NewAutomation(placement, partner, jobType))
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to create automation", goerr.V(PlacementIDKey, placement.ID))
	}

	uc.runSlack(ctx, created, partner)
	switch jobType {
	case types.JobTypeOnboarding:
		uc.runNoko(ctx, created)
	case types.JobTypeOffboarding:
		uc.runEmail(ctx, created, partner)
	}

	updated, err := uc.repo.Automation().Update(ctx, created)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to update automation", goerr.V(AutomationIDKey, created.ID))
	}

	logging.From(ctx).Info("automation done",
		AutomationIDKey, updated.ID,
		JobTypeKey, jobType,
		PlacementIDKey, placement.ID,
		"succeeded", updated.Succeeded(),
	)
	return updated, nil
}

// Retry runs the failed channels of an automation again and replaces their
// activities with the new outcome
func (uc *AutomationUseCase) Retry(ctx context.Context, id int64) (*model.Automation, error) {
	automation, err := uc.repo.Automation().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get automation", goerr.V(AutomationIDKey, id))
	}
	if automation.Succeeded() {
		return automation, nil
	}

	partner, err := uc.partners.Resolve(ctx, automation.PartnerID, automation.Type)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve partner", goerr.V(AutomationIDKey, id))
	}

	if automation.SlackStatus() == types.ActivityStatusFailure {
		automation.SlackActivities = nil
		uc.runSlack(ctx, automation, partner)
	}
	switch automation.Type {
	case types.JobTypeOnboarding:
		if automation.NokoStatus() == types.ActivityStatusFailure {
			automation.NokoActivities = nil
			uc.runNoko(ctx, automation)
		}
	case types.JobTypeOffboarding:
		if automation.EmailStatus() == types.ActivityStatusFailure {
			automation.EmailActivities = nil
			uc.runEmail(ctx, automation, partner)
		}
	}

	updated, err := uc.repo.Automation().Update(ctx, automation)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to update automation", goerr.V(AutomationIDKey, id))
	}
	return updated, nil
}

// ProcessNewPlacements runs the job type's automation for every new placement
// in the configured status. A failing placement is reported and skipped.
func (uc *AutomationUseCase) ProcessNewPlacements(ctx context.Context, jobType types.JobType) ([]*model.Automation, error) {
	status, ok := uc.statuses[jobType]
	if !ok {
		return nil, goerr.Wrap(ErrInvalidJobType, "no placement status for job type", goerr.V(JobTypeKey, jobType))
	}

	placements, err := uc.placements.FetchNewPlacements(ctx, status)
	if err != nil {
		return nil, err
	}

	var done []*model.Automation
	for _, placement := range placements {
		if err := ctx.Err(); err != nil {
			return done, goerr.Wrap(err, "placement processing interrupted")
		}

		automation, err := uc.Run(ctx, placement, jobType)
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to automate placement")
			continue
		}
		done = append(done, automation)
	}

	logging.From(ctx).Info("placements processed",
		JobTypeKey, jobType,
		"fetched", len(placements),
		"automated", len(done),
	)
	return done, nil
}

// List returns one page of automations created in the range
func (uc *AutomationUseCase) List(ctx context.Context, r model.DateRange, jobType types.JobType, page model.Page) ([]*model.AutomationView, model.Pagination, error) {
	automations, total, err := uc.repo.Automation().List(ctx, model.AutomationFilter{
		From:   r.From,
		To:     r.To,
		Type:   jobType,
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, model.Pagination{}, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to list automations")
	}

	views := make([]*model.AutomationView, len(automations))
	for i, a := range automations {
		views[i] = a.View()
	}
	return views, model.NewPagination(page, total), nil
}

// Stats counts automations and their outcome per job type
func (uc *AutomationUseCase) Stats(ctx context.Context, r model.DateRange) (map[types.JobType]*model.AutomationStats, error) {
	automations, _, err := uc.repo.Automation().List(ctx, model.AutomationFilter{From: r.From, To: r.To})
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrPersistence, err), "failed to list automations for stats")
	}

	stats := make(map[types.JobType]*model.AutomationStats)
	for _, jobType := range types.AllJobTypes() {
		stats[jobType] = &model.AutomationStats{}
	}
	for _, a := range automations {
		s, ok := stats[a.Type]
		if !ok {
			continue
		}
		s.Total++
		if a.Succeeded() {
			s.Success++
		} else {
			s.Failure++
		}
	}
	return stats, nil
}

func recordActivity(channel string, status types.ActivityStatus) {
	metrics.AutomationActivityTotal.WithLabelValues(channel, string(status)).Inc()
}

func statusOf(err error) (types.ActivityStatus, string) {
	if err != nil {
		return types.ActivityStatusFailure, err.Error()
	}
	return types.ActivityStatusSuccess, ""
}

type slackSlot struct {
	kind       types.ChannelKind
	descriptor model.ChannelDescriptor
}

// runSlack records how both channels were provisioned and then invites the
// fellow to them (onboarding) or removes the fellow from them (offboarding)
func (uc *AutomationUseCase) runSlack(ctx context.Context, a *model.Automation, partner *model.Partner) {
	add := func(act model.SlackActivity) {
		a.SlackActivities = append(a.SlackActivities, act)
		recordActivity(activityChannelSlack, act.Status)
	}

	var bundle model.ChannelBundle
	if partner.SlackChannels != nil {
		bundle = *partner.SlackChannels
	}
	slots := []slackSlot{
		{kind: types.ChannelKindGeneral, descriptor: bundle.General},
		{kind: types.ChannelKindInternal, descriptor: bundle.Internal},
	}

	var ready []model.ChannelDescriptor
	for _, slot := range slots {
		d := slot.descriptor
		if d.ChannelID == "" {
			add(model.SlackActivity{
				Status:        types.ActivityStatusFailure,
				StatusMessage: fmt.Sprintf("no %s channel for %s", slot.kind, a.PartnerName),
				Type:          types.SlackActivityRetrieve,
			})
			continue
		}

		actType := types.SlackActivityRetrieve
		verb := "retrieved"
		if d.ChannelProvision == types.ChannelProvisionCreate {
			actType = types.SlackActivityCreate
			verb = "created"
		}
		add(model.SlackActivity{
			Status:        types.ActivityStatusSuccess,
			StatusMessage: fmt.Sprintf("%s channel %s %s", slot.kind, d.ChannelName, verb),
			ChannelID:     d.ChannelID,
			ChannelName:   d.ChannelName,
			Type:          actType,
		})
		ready = append(ready, d)
	}

	memberType := types.SlackActivityInvite
	if a.Type == types.JobTypeOffboarding {
		memberType = types.SlackActivityKick
	}

	if uc.membership == nil {
		add(model.SlackActivity{
			Status:        types.ActivityStatusFailure,
			StatusMessage: "slack membership is not configured",
			Type:          memberType,
		})
		return
	}

	userID, err := uc.membership.LookupUserByEmail(ctx, a.FellowEmail)
	if err != nil {
		add(model.SlackActivity{
			Status:        types.ActivityStatusFailure,
			StatusMessage: err.Error(),
			Type:          memberType,
		})
		return
	}

	for _, d := range ready {
		var opErr error
		var msg string
		if memberType == types.SlackActivityInvite {
			opErr = uc.membership.InviteUser(ctx, d.ChannelID, userID)
			msg = fmt.Sprintf("added %s to %s", a.FellowName, d.ChannelName)
		} else {
			opErr = uc.membership.RemoveUser(ctx, d.ChannelID, userID)
			msg = fmt.Sprintf("removed %s from %s", a.FellowName, d.ChannelName)
		}

		status, errMsg := statusOf(opErr)
		if errMsg != "" {
			msg = errMsg
		}
		add(model.SlackActivity{
			Status:        status,
			StatusMessage: msg,
			ChannelID:     d.ChannelID,
			ChannelName:   d.ChannelName,
			SlackUserID:   userID,
			Type:          memberType,
		})
	}
}

// runNoko makes sure the partner has a Noko project and gives the fellow access to it
func (uc *AutomationUseCase) runNoko(ctx context.Context, a *model.Automation) {
	add := func(act model.NokoActivity) {
		a.NokoActivities = append(a.NokoActivities, act)
		recordActivity(activityChannelNoko, act.Status)
	}

	if uc.noko == nil {
		add(model.NokoActivity{
			Status:        types.ActivityStatusFailure,
			StatusMessage: "noko is not configured",
			Type:          types.NokoActivityProjectCreation,
		})
		return
	}

	project, err := uc.noko.GetOrCreateProject(ctx, a.PartnerName)
	if err != nil {
		add(model.NokoActivity{
			Status:        types.ActivityStatusFailure,
			StatusMessage: err.Error(),
			Type:          types.NokoActivityProjectCreation,
		})
		return
	}

	msg := fmt.Sprintf("%s noko project already exist", a.PartnerName)
	if project.Created {
		msg = fmt.Sprintf("%s noko project created", a.PartnerName)
	}
	add(model.NokoActivity{
		Status:        types.ActivityStatusSuccess,
		StatusMessage: msg,
		ProjectID:     project.ID,
		Type:          types.NokoActivityProjectCreation,
	})

	userID, err := uc.noko.AssignProject(ctx, a.FellowEmail, project.ID)
	status, errMsg := statusOf(err)
	msg = fmt.Sprintf("Assigned a noko project to %s", a.FellowEmail)
	if errMsg != "" {
		msg = errMsg
	}
	add(model.NokoActivity{
		Status:        status,
		StatusMessage: msg,
		NokoUserID:    userID,
		ProjectID:     project.ID,
		Type:          types.NokoActivityProjectAssignment,
	})
}

// runEmail sends the SOP and IT offboarding mails to the recipients of the
// partner's location
func (uc *AutomationUseCase) runEmail(ctx context.Context, a *model.Automation, partner *model.Partner) {
	add := func(act model.EmailActivity) {
		a.EmailActivities = append(a.EmailActivities, act)
		recordActivity(activityChannelEmail, act.Status)
	}

	kinds := []types.EmailActivityType{
		types.EmailActivitySOPOffboarding,
		types.EmailActivityITOffboarding,
	}

	entry, err := uc.locations.Get(partner.Location)
	if err != nil {
		for _, kind := range kinds {
			add(model.EmailActivity{
				Status:        types.ActivityStatusFailure,
				StatusMessage: err.Error(),
				Type:          kind,
			})
		}
		return
	}

	recipients := map[types.EmailActivityType][]string{
		types.EmailActivitySOPOffboarding: entry.SOPRecipient,
		types.EmailActivityITOffboarding:  entry.ITRecipient,
	}

	for _, kind := range kinds {
		to := recipients[kind]
		if len(to) == 0 {
			add(model.EmailActivity{
				Status:        types.ActivityStatusFailure,
				StatusMessage: fmt.Sprintf("no %s recipients for location %s", kind, entry.Name),
				Type:          kind,
			})
			continue
		}

		mail, err := buildOffboardingMail(kind, a, to)
		if err == nil {
			err = uc.mailer.Send(ctx, mail)
		}

		act := model.EmailActivity{
			Recipient: strings.Join(to, ", "),
			Type:      kind,
		}
		if mail != nil {
			act.Subject = mail.Subject
		}
		act.Status, act.StatusMessage = statusOf(err)
		if err == nil {
			act.StatusMessage = fmt.Sprintf("%s mail sent for %s", kind, a.FellowName)
		}
		add(act)
	}
}
