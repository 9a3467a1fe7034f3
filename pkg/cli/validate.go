package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/cli/config"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the automation configuration file",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if c.String("config") == "" {
				return goerr.Wrap(config.ErrMissingFlag, "--config is required", goerr.V(config.FlagKey, "config"))
			}
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			registry := appCfg.LocationRegistry()
			for _, loc := range registry.List() {
				logger.Info("Location validated",
					"name", loc.Name,
					"sop_recipients", len(loc.SOPRecipient),
					"it_recipients", len(loc.ITRecipient),
				)
			}
			if _, err := registry.Get(model.DefaultLocation); err != nil {
				logger.Warn("No default location, partners in other locations get no offboarding mail")
			}

			naming := appCfg.Channel.Naming()
			logger.Info("Channel naming",
				"general", naming.PartnerChannelName("example", "example", types.ChannelKindGeneral),
				"internal", naming.PartnerChannelName("example", "example", types.ChannelKindInternal),
			)

			logger.Info("Configuration validation passed", "location_count", len(appCfg.Locations))
			return nil
		},
	}
}
