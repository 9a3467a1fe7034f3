package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL of the channel name index
	DefaultCacheTTL = 45 * time.Second
)

// ErrUserNotFound is returned when no Slack user has the requested email
var ErrUserNotFound = goerr.New("slack user not found")

// client implements Service interface
type client struct {
	api      *slack.Client
	cacheTTL time.Duration

	mu        sync.RWMutex
	index     map[string]Channel
	expiresAt time.Time
}

// Option is a functional option for client configuration
type Option func(*clientConfig)

type clientConfig struct {
	cacheTTL time.Duration
	apiURL   string
}

// WithCacheTTL sets the TTL of the channel name index
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL points the client at another Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *clientConfig) {
		c.apiURL = url
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	cfg := &clientConfig{cacheTTL: DefaultCacheTTL}
	for _, opt := range opts {
		opt(cfg)
	}

	var apiOpts []slack.Option
	if cfg.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(cfg.apiURL))
	}

	return &client{
		api:      slack.New(token, apiOpts...),
		cacheTTL: cfg.cacheTTL,
	}, nil
}

// loadIndex lists every non-archived channel visible to the bot
func (c *client) loadIndex(ctx context.Context) (map[string]Channel, error) {
	index := make(map[string]Channel)
	var cursor string

	for {
		params := &slack.GetConversationsParameters{
			Types:           []string{"public_channel", "private_channel"},
			ExcludeArchived: true,
			Limit:           200,
			Cursor:          cursor,
		}

		convs, nextCursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get conversations")
		}

		for _, conv := range convs {
			index[conv.Name] = Channel{
				ID:        conv.ID,
				Name:      conv.Name,
				IsPrivate: conv.IsPrivate,
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return index, nil
}

// FindChannelByName looks the name up in the cached index, refreshing it
// when expired or when the name is unknown
func (c *client) FindChannelByName(ctx context.Context, name string) (*Channel, error) {
	now := time.Now()

	c.mu.RLock()
	if c.index != nil && c.expiresAt.After(now) {
		if ch, ok := c.index[name]; ok {
			c.mu.RUnlock()
			return &ch, nil
		}
	}
	c.mu.RUnlock()

	index, err := c.loadIndex(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find channel", goerr.V("name", name))
	}

	c.mu.Lock()
	c.index = index
	c.expiresAt = now.Add(c.cacheTTL)
	c.mu.Unlock()

	if ch, ok := index[name]; ok {
		return &ch, nil
	}
	return nil, nil
}

// CreateChannel creates a channel and records it in the index
func (c *client) CreateChannel(ctx context.Context, name string, private bool) (*Channel, error) {
	conv, err := c.api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
		IsPrivate:   private,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack channel", goerr.V("channelName", name), goerr.V("private", private))
	}

	ch := Channel{ID: conv.ID, Name: conv.Name, IsPrivate: private}

	c.mu.Lock()
	if c.index != nil {
		c.index[ch.Name] = ch
	}
	c.mu.Unlock()

	return &ch, nil
}

// LookupUserByEmail retrieves the user registered with the email address
func (c *client) LookupUserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		if err.Error() == "users_not_found" {
			return nil, goerr.Wrap(ErrUserNotFound, "no user for email", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to look up user", goerr.V("email", email))
	}

	return &User{
		ID:       user.ID,
		Name:     user.Name,
		RealName: user.RealName,
		Email:    user.Profile.Email,
	}, nil
}

// InviteUser invites a user to a channel
func (c *client) InviteUser(ctx context.Context, channelID, userID string) error {
	if _, err := c.api.InviteUsersToConversationContext(ctx, channelID, userID); err != nil {
		return goerr.Wrap(err, "failed to invite user", goerr.V("channelID", channelID), goerr.V("userID", userID))
	}
	return nil
}

// RemoveUser removes a user from a channel
func (c *client) RemoveUser(ctx context.Context, channelID, userID string) error {
	if err := c.api.KickUserFromConversationContext(ctx, channelID, userID); err != nil {
		return goerr.Wrap(err, "failed to remove user", goerr.V("channelID", channelID), goerr.V("userID", userID))
	}
	return nil
}
