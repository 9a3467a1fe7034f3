package types

// ActivityStatus is the outcome of a single automation activity
type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusFailure ActivityStatus = "failure"
)

// IsValid checks if the activity status is valid
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusSuccess, ActivityStatusFailure:
		return true
	default:
		return false
	}
}

// String returns the string representation of the activity status
func (s ActivityStatus) String() string {
	return string(s)
}

// SlackActivityType is the kind of Slack operation performed
type SlackActivityType string

const (
	SlackActivityCreate   SlackActivityType = "create"
	SlackActivityRetrieve SlackActivityType = "retrieve"
	SlackActivityInvite   SlackActivityType = "invite"
	SlackActivityKick     SlackActivityType = "kick"
)

// EmailActivityType is the kind of mail sent
type EmailActivityType string

const (
	EmailActivitySOPOffboarding EmailActivityType = "sopOffboarding"
	EmailActivityITOffboarding  EmailActivityType = "itOffboarding"
)

// NokoActivityType is the kind of Noko operation performed
type NokoActivityType string

const (
	NokoActivityProjectCreation   NokoActivityType = "projectCreation"
	NokoActivityProjectAssignment NokoActivityType = "projectAssignment"
)
