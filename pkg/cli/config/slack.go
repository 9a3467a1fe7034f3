package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/service/slack"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
	apiURL   string
	cacheTTL time.Duration
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (channels:manage, groups:write, users:read.email)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("PARTNERFLOW_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Slack API base URL (for testing)",
			Category:    "Slack",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("PARTNERFLOW_SLACK_API_URL"),
		},
		&cli.DurationFlag{
			Name:        "slack-channel-cache-ttl",
			Usage:       "How long the channel name index is reused",
			Category:    "Slack",
			Value:       slack.DefaultCacheTTL,
			Destination: &x.cacheTTL,
			Sources:     cli.EnvVars("PARTNERFLOW_SLACK_CHANNEL_CACHE_TTL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("api-url", x.apiURL),
	)
}

// IsConfigured reports whether a bot token was given
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates the channel provisioner. It returns nil when no bot
// token is configured.
func (x *Slack) Configure(naming slack.ChannelNaming) (*slack.Provisioner, error) {
	if !x.IsConfigured() {
		logging.Default().Warn("Slack bot token not configured, partner channels will not be provisioned")
		return nil, nil
	}

	opts := []slack.Option{slack.WithCacheTTL(x.cacheTTL)}
	if x.apiURL != "" {
		opts = append(opts, slack.WithAPIURL(x.apiURL))
	}

	svc, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}

	logging.Default().Info("Slack service enabled", "prefix", naming.Prefix, "internal_suffix", naming.InternalSuffix)
	return slack.NewProvisioner(svc, slack.WithChannelNaming(naming)), nil
}
