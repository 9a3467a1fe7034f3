package interfaces

import (
	"context"
)

// NokoProject is the subset of a Noko project the automations use
type NokoProject struct {
	ID      int64
	Name    string
	Created bool
}

// NokoClient manages time-tracking projects of partners
type NokoClient interface {
	// GetOrCreateProject returns the project with the given name, creating it when absent
	GetOrCreateProject(ctx context.Context, name string) (*NokoProject, error)
	GetUserIDByEmail(ctx context.Context, email string) (int64, error)
	// AssignProject gives the user with the given email access to the project
	// and returns the user's Noko ID
	AssignProject(ctx context.Context, email string, projectID int64) (int64, error)
}
