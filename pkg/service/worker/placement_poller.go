package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/robfig/cron/v3"
)

// PlacementProcessor runs automations for newly created placements
type PlacementProcessor interface {
	ProcessNewPlacements(ctx context.Context, jobType types.JobType) ([]*model.Automation, error)
}

// PlacementPoller periodically runs onboarding and offboarding automations
// for new placements.
//
// Only one poller may run per deployment. Two pollers would automate the same
// placement twice.
type PlacementPoller struct {
	processor PlacementProcessor
	interval  time.Duration
	jobTypes  []types.JobType
	cron      *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

type PollerOption func(*PlacementPoller)

// WithJobTypes limits the job types run on every poll
func WithJobTypes(jobTypes ...types.JobType) PollerOption {
	return func(p *PlacementPoller) {
		p.jobTypes = jobTypes
	}
}

// NewPlacementPoller creates a poller running every interval
func NewPlacementPoller(processor PlacementProcessor, interval time.Duration, opts ...PollerOption) *PlacementPoller {
	p := &PlacementPoller{
		processor: processor,
		interval:  interval,
		jobTypes:  types.AllJobTypes(),
	}
	for _, opt := range opts {
		opt(p)
	}

	// A poll still running when the next one is due is skipped
	logger := cronLogger{}
	p.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	return p
}

// Start schedules the polls. The first poll runs after one interval.
func (p *PlacementPoller) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return goerr.New("poll interval must be positive", goerr.V("interval", p.interval))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return goerr.New("placement poller already started")
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	if _, err := p.cron.AddFunc("@every "+p.interval.String(), p.poll); err != nil {
		p.cancel()
		return goerr.Wrap(err, "failed to schedule placement poll", goerr.V("interval", p.interval))
	}

	logging.Default().Info("placement poller starting", "interval", p.interval.String())
	p.cron.Start()
	return nil
}

// Stop cancels a running poll and waits for it to return
func (p *PlacementPoller) Stop() {
	logging.Default().Info("placement poller stopping")
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	<-p.cron.Stop().Done()
	logging.Default().Info("placement poller stopped")
}

func (p *PlacementPoller) poll() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()

	if err := p.RunOnce(ctx); err != nil {
		logging.Default().Error("placement poll failed (will retry next interval)", "error", err.Error())
	}
}

// RunOnce processes new placements for every job type. A failing job type
// does not stop the others; the first error is returned.
func (p *PlacementPoller) RunOnce(ctx context.Context) error {
	start := time.Now()
	var firstErr error
	total := 0

	for _, jobType := range p.jobTypes {
		if ctx.Err() != nil {
			return goerr.Wrap(ctx.Err(), "placement poll cancelled")
		}

		automations, err := p.processor.ProcessNewPlacements(ctx, jobType)
		if err != nil {
			logging.From(ctx).Error("failed to process new placements",
				"job_type", jobType,
				"error", err.Error())
			if firstErr == nil {
				firstErr = goerr.Wrap(err, "failed to process new placements", goerr.V("job_type", jobType))
			}
			continue
		}
		total += len(automations)
	}

	logging.From(ctx).Info("placement poll completed",
		"automations", total,
		"duration", time.Since(start).String())
	return firstErr
}

// cronLogger forwards the scheduler's messages to the default logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logging.Default().Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Default().Error(msg, append(keysAndValues, "error", err.Error())...)
}
