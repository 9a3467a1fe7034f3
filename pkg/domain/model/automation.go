package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

// ErrAutomationNotFound is returned when an automation record does not exist
var ErrAutomationNotFound = goerr.New("automation not found")

// SlackActivity records one Slack operation of an automation run
type SlackActivity struct {
	Status        types.ActivityStatus    `json:"status"`
	StatusMessage string                  `json:"statusMessage"`
	ChannelID     string                  `json:"channelId"`
	ChannelName   string                  `json:"channelName"`
	SlackUserID   string                  `json:"slackUserId"`
	Type          types.SlackActivityType `json:"type"`
}

// EmailActivity records one mail sent by an automation run
type EmailActivity struct {
	Status        types.ActivityStatus    `json:"status"`
	StatusMessage string                  `json:"statusMessage"`
	Recipient     string                  `json:"recipient"`
	Subject       string                  `json:"subject"`
	Type          types.EmailActivityType `json:"type"`
}

// NokoActivity records one Noko operation of an automation run
type NokoActivity struct {
	Status        types.ActivityStatus   `json:"status"`
	StatusMessage string                 `json:"statusMessage"`
	NokoUserID    int64                  `json:"nokoUserId"`
	ProjectID     int64                  `json:"projectId"`
	Type          types.NokoActivityType `json:"type"`
}

// Automation is the record of one onboarding or offboarding run for a placement
type Automation struct {
	ID              int64
	FellowID        string
	FellowName      string
	FellowEmail     string
	PartnerID       string
	PartnerName     string
	PlacementID     string
	EndDate         string // placement end date, rendered in offboarding mails
	Type            types.JobType
	SlackActivities []SlackActivity
	EmailActivities []EmailActivity
	NokoActivities  []NokoActivity
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAutomation starts an automation record for a placement
func NewAutomation(placement *Placement, partner *Partner, jobType types.JobType) *Automation {
	partnerName := placement.ClientName
	if partner != nil && partner.Name != "" {
		partnerName = partner.Name
	}
	return &Automation{
		FellowID:    placement.Fellow.ID,
		FellowName:  placement.Fellow.Name,
		FellowEmail: placement.Fellow.Email,
		PartnerID:   placement.ClientID,
		PartnerName: partnerName,
		PlacementID: placement.ID,
		EndDate:     placement.EndDate,
		Type:        jobType,
	}
}

// Clone returns a deep copy of the automation
func (a *Automation) Clone() *Automation {
	if a == nil {
		return nil
	}
	cloned := *a
	cloned.SlackActivities = append([]SlackActivity(nil), a.SlackActivities...)
	cloned.EmailActivities = append([]EmailActivity(nil), a.EmailActivities...)
	cloned.NokoActivities = append([]NokoActivity(nil), a.NokoActivities...)
	return &cloned
}

// aggregateStatus is success only when there is at least one activity and
// none of them failed
func aggregateStatus(statuses []types.ActivityStatus) types.ActivityStatus {
	if len(statuses) == 0 {
		return types.ActivityStatusFailure
	}
	for _, s := range statuses {
		if s != types.ActivityStatusSuccess {
			return types.ActivityStatusFailure
		}
	}
	return types.ActivityStatusSuccess
}

// SlackStatus is the aggregated status of the Slack activities
func (a *Automation) SlackStatus() types.ActivityStatus {
	statuses := make([]types.ActivityStatus, len(a.SlackActivities))
	for i, act := range a.SlackActivities {
		statuses[i] = act.Status
	}
	return aggregateStatus(statuses)
}

// EmailStatus is the aggregated status of the email activities
func (a *Automation) EmailStatus() types.ActivityStatus {
	statuses := make([]types.ActivityStatus, len(a.EmailActivities))
	for i, act := range a.EmailActivities {
		statuses[i] = act.Status
	}
	return aggregateStatus(statuses)
}

// NokoStatus is the aggregated status of the Noko activities
func (a *Automation) NokoStatus() types.ActivityStatus {
	statuses := make([]types.ActivityStatus, len(a.NokoActivities))
	for i, act := range a.NokoActivities {
		statuses[i] = act.Status
	}
	return aggregateStatus(statuses)
}

// Succeeded reports whether every channel that applies to the automation's
// job type succeeded. Onboarding sends no mail and offboarding touches no
// Noko project.
func (a *Automation) Succeeded() bool {
	if a.SlackStatus() != types.ActivityStatusSuccess {
		return false
	}
	switch a.Type {
	case types.JobTypeOnboarding:
		return a.NokoStatus() == types.ActivityStatusSuccess
	case types.JobTypeOffboarding:
		return a.EmailStatus() == types.ActivityStatusSuccess
	default:
		return false
	}
}

// SlackAutomations is the aggregated Slack part of an AutomationView
type SlackAutomations struct {
	Status          types.ActivityStatus `json:"status"`
	SlackActivities []SlackActivity      `json:"slackActivities"`
}

// EmailAutomations is the aggregated email part of an AutomationView
type EmailAutomations struct {
	Status          types.ActivityStatus `json:"status"`
	EmailActivities []EmailActivity      `json:"emailActivities"`
}

// NokoAutomations is the aggregated Noko part of an AutomationView
type NokoAutomations struct {
	Status         types.ActivityStatus `json:"status"`
	NokoActivities []NokoActivity       `json:"nokoActivities"`
}

// AutomationView is the API representation of an automation
type AutomationView struct {
	ID               int64            `json:"id"`
	FellowID         string           `json:"fellowId"`
	FellowName       string           `json:"fellowName"`
	PartnerID        string           `json:"partnerId"`
	PartnerName      string           `json:"partnerName"`
	PlacementID      string           `json:"placementId"`
	Type             types.JobType    `json:"type"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	SlackAutomations SlackAutomations `json:"slackAutomations"`
	EmailAutomations EmailAutomations `json:"emailAutomations"`
	NokoAutomations  NokoAutomations  `json:"nokoAutomations"`
}

// View builds the aggregated representation of the automation
func (a *Automation) View() *AutomationView {
	return &AutomationView{
		ID:          a.ID,
		FellowID:    a.FellowID,
		FellowName:  a.FellowName,
		PartnerID:   a.PartnerID,
		PartnerName: a.PartnerName,
		PlacementID: a.PlacementID,
		Type:        a.Type,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		SlackAutomations: SlackAutomations{
			Status:          a.SlackStatus(),
			SlackActivities: append(make([]SlackActivity, 0, len(a.SlackActivities)), a.SlackActivities...),
		},
		EmailAutomations: EmailAutomations{
			Status:          a.EmailStatus(),
			EmailActivities: append(make([]EmailActivity, 0, len(a.EmailActivities)), a.EmailActivities...),
		},
		NokoAutomations: NokoAutomations{
			Status:         a.NokoStatus(),
			NokoActivities: append(make([]NokoActivity, 0, len(a.NokoActivities)), a.NokoActivities...),
		},
	}
}

// AutomationFilter narrows automation listings
type AutomationFilter struct {
	From   time.Time
	To     time.Time
	Type   types.JobType // empty matches every type
	Offset int
	Limit  int // 0 means no limit
}

// Matches reports whether the automation falls inside the filter's range and type
func (f AutomationFilter) Matches(a *Automation) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if !f.From.IsZero() && a.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.CreatedAt.After(f.To) {
		return false
	}
	return true
}
