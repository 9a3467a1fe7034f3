package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/service/allocations"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Allocations holds the flags of the allocations service client
type Allocations struct {
	partnersURL   string
	placementsURL string
	token         string
	caCert        string
}

func (x *Allocations) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "allocations-partners-url",
			Usage:       "Base URL of the partner profile API (GET <url>/<partner id>)",
			Category:    "Allocations",
			Destination: &x.partnersURL,
			Sources:     cli.EnvVars("PARTNERFLOW_ALLOCATIONS_PARTNERS_URL"),
		},
		&cli.StringFlag{
			Name:        "allocations-placements-url",
			Usage:       "URL of the placements API",
			Category:    "Allocations",
			Destination: &x.placementsURL,
			Sources:     cli.EnvVars("PARTNERFLOW_ALLOCATIONS_PLACEMENTS_URL"),
		},
		&cli.StringFlag{
			Name:        "allocations-api-token",
			Usage:       "API token sent in the api-token header",
			Category:    "Allocations",
			Destination: &x.token,
			Sources:     cli.EnvVars("PARTNERFLOW_ALLOCATIONS_API_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "allocations-ca-cert",
			Usage:       "PEM bundle of an additional CA trusted for the allocations service",
			Category:    "Allocations",
			Destination: &x.caCert,
			Sources:     cli.EnvVars("PARTNERFLOW_ALLOCATIONS_CA_CERT"),
		},
	}
}

func (x Allocations) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("partners-url", x.partnersURL),
		slog.String("placements-url", x.placementsURL),
		slog.Int("api-token.len", len(x.token)),
		slog.String("ca-cert", x.caCert),
	)
}

// IsConfigured reports whether any allocations flag was given
func (x *Allocations) IsConfigured() bool {
	return x.partnersURL != "" || x.placementsURL != "" || x.token != ""
}

// Configure creates the allocations client. It returns nil when nothing is
// configured; a partial configuration is an error.
func (x *Allocations) Configure() (*allocations.Client, error) {
	if !x.IsConfigured() {
		logging.Default().Warn("Allocations service not configured, unknown partners cannot be resolved")
		return nil, nil
	}

	var opts []allocations.Option
	if x.caCert != "" {
		pool, err := allocations.LoadCACert(x.caCert)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load allocations CA certificate")
		}
		opts = append(opts, allocations.WithRootCAs(pool))
	}

	client, err := allocations.New(x.partnersURL, x.placementsURL, x.token, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize allocations client")
	}
	logging.Default().Info("Allocations service enabled", "config", x)
	return client, nil
}
