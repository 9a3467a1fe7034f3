package cli

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

func cmdPoll() *cli.Command {
	var rtCfg runtimeConfig

	return &cli.Command{
		Name:  "poll",
		Usage: "Run one placement polling round and exit",
		Flags: rtCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := rtCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			summary := &pollSummary{processor: rt.uc.Automation}
			poller, err := rtCfg.poller.Configure(summary)
			if err != nil {
				return err
			}
			err = poller.RunOnce(ctx)
			summary.print(c.Root().Writer)
			return err
		},
	}
}

// pollSummary records the automations of a polling round for printing
type pollSummary struct {
	processor   worker.PlacementProcessor
	automations []*model.Automation
}

func (s *pollSummary) ProcessNewPlacements(ctx context.Context, jobType types.JobType) ([]*model.Automation, error) {
	automations, err := s.processor.ProcessNewPlacements(ctx, jobType)
	s.automations = append(s.automations, automations...)
	return automations, err
}

func (s *pollSummary) print(w io.Writer) {
	ok := color.New(color.FgGreen)
	ng := color.New(color.FgRed)
	for _, a := range s.automations {
		c := ok
		status := types.ActivityStatusSuccess
		if !a.Succeeded() {
			c, status = ng, types.ActivityStatusFailure
		}
		_, _ = c.Fprintf(w, "%-8s %-12s %s -> %s (automation %d)\n", status, a.Type, a.FellowName, a.PartnerName, a.ID)
	}
}
