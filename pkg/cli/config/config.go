package config

import (
	"errors"
	"io/fs"
	"net/mail"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/service/slack"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig is the automation configuration file
type AppConfig struct {
	Locations []Location    `toml:"location"`
	Channel   ChannelConfig `toml:"channel"`

	path string
}

// Location holds the offboarding mail recipients of one partner location
type Location struct {
	Name         string   `toml:"name"`
	SOPRecipient []string `toml:"sop_recipient"`
	ITRecipient  []string `toml:"it_recipient"`
}

// Validate checks if the Location is valid
func (l *Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return goerr.Wrap(ErrMissingName, "location name is required")
	}
	for _, addr := range append(append([]string{}, l.SOPRecipient...), l.ITRecipient...) {
		if _, err := mail.ParseAddress(addr); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid recipient address",
				goerr.V(LocationKey, l.Name), goerr.V("address", addr))
		}
	}
	return nil
}

// ChannelConfig overrides the partner channel naming scheme
type ChannelConfig struct {
	Prefix         *string `toml:"prefix"`
	InternalSuffix *string `toml:"internal_suffix"`
}

// Naming merges the overrides into the default naming scheme
func (c ChannelConfig) Naming() slack.ChannelNaming {
	naming := slack.DefaultChannelNaming()
	if c.Prefix != nil {
		naming.Prefix = *c.Prefix
	}
	if c.InternalSuffix != nil {
		naming.InternalSuffix = *c.InternalSuffix
	}
	return naming
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	names := make(map[string]bool)
	for _, loc := range a.Locations {
		if err := loc.Validate(); err != nil {
			return goerr.Wrap(err, "invalid location")
		}
		key := strings.ToLower(strings.TrimSpace(loc.Name))
		if names[key] {
			return goerr.Wrap(ErrInvalidConfig, "duplicate location", goerr.V(LocationKey, loc.Name))
		}
		names[key] = true
	}

	if a.Channel.InternalSuffix != nil && strings.Trim(slack.NormalizeChannelName(*a.Channel.InternalSuffix), "-_") == "" {
		return goerr.Wrap(ErrInvalidConfig, "internal channel suffix must not be empty")
	}
	return nil
}

// LoadAppConfiguration loads the automation configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(errors.Join(ErrConfigNotFound, err), "config file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse config file", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// LocationRegistry builds the recipient registry of the configured locations
func (a *AppConfig) LocationRegistry() *model.LocationRegistry {
	registry := model.NewLocationRegistry()
	for _, loc := range a.Locations {
		registry.Register(&model.LocationEntry{
			Name:         loc.Name,
			SOPRecipient: loc.SOPRecipient,
			ITRecipient:  loc.ITRecipient,
		})
	}
	return registry
}

func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the automation configuration file (TOML)",
			Sources:     cli.EnvVars("PARTNERFLOW_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the configuration file. Without a file, no location has
// recipients and the default channel naming is used.
func (a *AppConfig) Configure() error {
	if a.path == "" {
		logging.Default().Warn("No configuration file given, offboarding mails have no recipients")
		return nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return err
	}
	a.Locations = loaded.Locations
	a.Channel = loaded.Channel

	logging.Default().Info("Configuration loaded",
		"path", a.path,
		"locations", len(a.Locations),
	)
	return nil
}
