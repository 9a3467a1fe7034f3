package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/service/noko"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Noko holds the flags of the Noko time tracking client
type Noko struct {
	token   string
	baseURL string
}

func (x *Noko) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "noko-token",
			Usage:       "Noko personal access token",
			Category:    "Noko",
			Destination: &x.token,
			Sources:     cli.EnvVars("PARTNERFLOW_NOKO_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "noko-base-url",
			Usage:       "Noko API base URL",
			Category:    "Noko",
			Value:       noko.DefaultBaseURL,
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("PARTNERFLOW_NOKO_BASE_URL"),
		},
	}
}

func (x Noko) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("token.len", len(x.token)),
		slog.String("base-url", x.baseURL),
	)
}

// Configure creates the Noko client, or returns nil without a token
func (x *Noko) Configure() (*noko.Client, error) {
	if x.token == "" {
		logging.Default().Warn("Noko token not configured, onboarding will not assign Noko projects")
		return nil, nil
	}

	client, err := noko.New(x.token, noko.WithBaseURL(x.baseURL))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize noko client")
	}
	logging.Default().Info("Noko service enabled", "base_url", x.baseURL)
	return client, nil
}
