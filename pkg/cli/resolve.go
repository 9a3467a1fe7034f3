package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdResolve() *cli.Command {
	var rtCfg runtimeConfig
	var partnerID string
	var jobType string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "partner-id",
			Aliases:     []string{"p"},
			Usage:       "Partner ID to resolve",
			Required:    true,
			Destination: &partnerID,
		},
		&cli.StringFlag{
			Name:        "job-type",
			Aliases:     []string{"t"},
			Usage:       "Job type (onboarding or offboarding)",
			Value:       string(types.JobTypeOnboarding),
			Destination: &jobType,
		},
	}
	flags = append(flags, rtCfg.Flags()...)

	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a partner, provisioning its Slack channels when needed, and print it",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			jt, err := types.ParseJobType(jobType)
			if err != nil {
				return err
			}

			rt, err := rtCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			partner, err := rt.uc.Partner.Resolve(ctx, partnerID, jt)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve partner")
			}

			return printPartner(c.Root().Writer, partner)
		},
	}
}

func printPartner(w io.Writer, partner *model.Partner) error {
	header := color.New(color.FgCyan, color.Bold)
	if _, err := header.Fprintf(w, "Partner %s (%s)\n", partner.PartnerID, partner.Name); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}

	data, err := json.MarshalIndent(partner, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode partner")
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}
