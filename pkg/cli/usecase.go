package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/cli/config"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// runtimeConfig groups the configuration shared by the commands that run
// automations
type runtimeConfig struct {
	app         config.AppConfig
	repository  config.Repository
	cache       config.Cache
	slack       config.Slack
	allocations config.Allocations
	noko        config.Noko
	mailer      config.Mailer
	report      config.Report
	poller      config.Poller
}

func (x *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.app.Flags()...)
	flags = append(flags, x.repository.Flags()...)
	flags = append(flags, x.cache.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.allocations.Flags()...)
	flags = append(flags, x.noko.Flags()...)
	flags = append(flags, x.mailer.Flags()...)
	flags = append(flags, x.report.Flags()...)
	flags = append(flags, x.poller.Flags()...)
	return flags
}

// runtime holds the wired use cases and the resources to release
type runtime struct {
	repo    interfaces.Repository
	uc      *usecase.UseCases
	closers []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logging.Default().Error("failed to release resource", "error", err.Error())
		}
	}
}

// Configure builds the use cases from the flags. extra options are applied
// last. The caller must Close the runtime.
func (x *runtimeConfig) Configure(ctx context.Context, extra ...usecase.Option) (*runtime, error) {
	rt := &runtime{}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	if err := x.app.Configure(); err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	repo, err := x.repository.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}
	rt.repo = repo
	rt.closers = append(rt.closers, repo.Close)

	cache, err := x.cache.Configure(ctx)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, x.cache.Close)

	pollerOpts, err := x.poller.UseCaseOptions()
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{
		usecase.WithPartnerCache(cache),
		usecase.WithLocations(x.app.LocationRegistry()),
	}
	opts = append(opts, pollerOpts...)

	provisioner, err := x.slack.Configure(x.app.Channel.Naming())
	if err != nil {
		return nil, err
	}
	if provisioner != nil {
		opts = append(opts,
			usecase.WithChannelProvisioner(provisioner),
			usecase.WithChannelMembership(provisioner),
		)
	}

	allocations, err := x.allocations.Configure()
	if err != nil {
		return nil, err
	}
	if allocations != nil {
		opts = append(opts, usecase.WithAllocations(allocations))
	}

	nokoClient, err := x.noko.Configure()
	if err != nil {
		return nil, err
	}
	if nokoClient != nil {
		opts = append(opts, usecase.WithNoko(nokoClient))
	}

	m, err := x.mailer.Configure()
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, x.mailer.Close)
	opts = append(opts, usecase.WithMailer(m))

	reports, err := x.report.Configure(ctx)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, x.report.Close)
	opts = append(opts, usecase.WithReportStore(reports))

	opts = append(opts, extra...)
	rt.uc = usecase.New(repo, opts...)
	ok = true
	return rt, nil
}
