package slack

import (
	"context"
)

// Service is the subset of the Slack API used by partner automations
type Service interface {
	// FindChannelByName looks up a channel, public or private, by its exact
	// name. Returns nil when no such channel exists.
	FindChannelByName(ctx context.Context, name string) (*Channel, error)

	// CreateChannel creates a channel and returns it
	CreateChannel(ctx context.Context, name string, private bool) (*Channel, error)

	// LookupUserByEmail returns the Slack user registered with the address
	LookupUserByEmail(ctx context.Context, email string) (*User, error)

	// InviteUser adds a user to a channel
	InviteUser(ctx context.Context, channelID, userID string) error

	// RemoveUser removes a user from a channel
	RemoveUser(ctx context.Context, channelID, userID string) error
}

// Channel represents a Slack channel
type Channel struct {
	ID        string
	Name      string
	IsPrivate bool
}

// User represents a Slack user
type User struct {
	ID       string
	Name     string
	RealName string
	Email    string
}
