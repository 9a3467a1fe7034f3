package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// JobType is the kind of automation being carried out for a placement
type JobType string

const (
	JobTypeOnboarding  JobType = "onboarding"
	JobTypeOffboarding JobType = "offboarding"
)

// AllJobTypes returns all valid job types
func AllJobTypes() []JobType {
	return []JobType{
		JobTypeOnboarding,
		JobTypeOffboarding,
	}
}

// IsValid checks if the job type is valid
func (j JobType) IsValid() bool {
	switch j {
	case JobTypeOnboarding, JobTypeOffboarding:
		return true
	default:
		return false
	}
}

// String returns the string representation of the job type
func (j JobType) String() string {
	return string(j)
}

// ParseJobType parses a string into a JobType
func ParseJobType(s string) (JobType, error) {
	jobType := JobType(s)
	if !jobType.IsValid() {
		return "", goerr.New("invalid job type", goerr.V("job_type", s))
	}
	return jobType, nil
}
