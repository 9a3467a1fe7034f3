package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrPersistence wraps failures of the partner and automation stores
	ErrPersistence = errors.New("persistence failed")

	// ErrNotConfigured is returned when an operation needs a client that was not wired
	ErrNotConfigured = errors.New("dependency not configured")

	// ErrInvalidJobType is returned for a job type other than onboarding or offboarding
	ErrInvalidJobType = errors.New("invalid job type")

	// ErrUnauthenticated is returned when a request carries no valid credential
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Context keys for error values
const (
	PartnerIDKey    = "partner_id"
	AutomationIDKey = "automation_id"
	JobTypeKey      = "job_type"
	PlacementIDKey  = "placement_id"
)
