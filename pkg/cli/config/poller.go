package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/caarlos0/duration"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/service/worker"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Poller holds the flags of the placement poller. Durations accept d and w
// units in addition to the time.Duration ones.
type Poller struct {
	interval          string
	window            string
	onboardingStatus  string
	offboardingStatus string
	disabled          bool
}

func (x *Poller) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "poll-interval",
			Usage:       "How often new placements are polled (e.g. 1d, 12h)",
			Category:    "Poller",
			Value:       "1d",
			Destination: &x.interval,
			Sources:     cli.EnvVars("PARTNERFLOW_POLL_INTERVAL"),
		},
		&cli.StringFlag{
			Name:        "placement-window",
			Usage:       "How recent a placement must be to count as new; keep equal to --poll-interval",
			Category:    "Poller",
			Value:       "1d",
			Destination: &x.window,
			Sources:     cli.EnvVars("PARTNERFLOW_PLACEMENT_WINDOW"),
		},
		&cli.StringFlag{
			Name:        "onboarding-status",
			Usage:       "Placement status that triggers onboarding",
			Category:    "Poller",
			Value:       usecase.DefaultOnboardingStatus,
			Destination: &x.onboardingStatus,
			Sources:     cli.EnvVars("PARTNERFLOW_ONBOARDING_STATUS"),
		},
		&cli.StringFlag{
			Name:        "offboarding-status",
			Usage:       "Placement status that triggers offboarding",
			Category:    "Poller",
			Value:       usecase.DefaultOffboardingStatus,
			Destination: &x.offboardingStatus,
			Sources:     cli.EnvVars("PARTNERFLOW_OFFBOARDING_STATUS"),
		},
		&cli.BoolFlag{
			Name:        "no-poll",
			Usage:       "Serve the API without polling placements",
			Category:    "Poller",
			Destination: &x.disabled,
			Sources:     cli.EnvVars("PARTNERFLOW_NO_POLL"),
		},
	}
}

func (x Poller) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("interval", x.interval),
		slog.String("window", x.window),
		slog.Bool("disabled", x.disabled),
	)
}

// Enabled reports whether the poller should run
func (x *Poller) Enabled() bool {
	return !x.disabled
}

func parseDuration(flag, value string) (time.Duration, error) {
	d, err := duration.Parse(value)
	if err != nil {
		return 0, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid duration", goerr.V(FlagKey, flag), goerr.V("value", value))
	}
	if d <= 0 {
		return 0, goerr.Wrap(ErrInvalidConfig, "duration must be positive", goerr.V(FlagKey, flag), goerr.V("value", value))
	}
	return d, nil
}

// Interval returns the parsed poll interval
func (x *Poller) Interval() (time.Duration, error) {
	return parseDuration("poll-interval", x.interval)
}

// UseCaseOptions returns the placement window and status options
func (x *Poller) UseCaseOptions() ([]usecase.Option, error) {
	window, err := parseDuration("placement-window", x.window)
	if err != nil {
		return nil, err
	}
	return []usecase.Option{
		usecase.WithPlacementWindow(window),
		usecase.WithPlacementStatus(types.JobTypeOnboarding, x.onboardingStatus),
		usecase.WithPlacementStatus(types.JobTypeOffboarding, x.offboardingStatus),
	}, nil
}

// Configure creates the poller on top of the automation use case
func (x *Poller) Configure(processor worker.PlacementProcessor) (*worker.PlacementPoller, error) {
	interval, err := x.Interval()
	if err != nil {
		return nil, err
	}
	return worker.NewPlacementPoller(processor, interval), nil
}
