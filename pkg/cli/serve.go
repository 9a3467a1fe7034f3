package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/cli/config"
	httpctrl "github.com/partnerflow/partnerflow/pkg/controller/http"
	"github.com/partnerflow/partnerflow/pkg/service/worker"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var enableMetrics bool
	var rtCfg runtimeConfig
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PARTNERFLOW_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics at /metrics",
			Value:       true,
			Sources:     cli.EnvVars("PARTNERFLOW_METRICS"),
			Destination: &enableMetrics,
		},
	}

	// Add shared config flags
	flags = append(flags, rtCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server and placement poller",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			authUC, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			rt, err := rtCfg.Configure(ctx, usecase.WithAuth(authUC))
			if err != nil {
				return err
			}
			defer rt.Close()

			var poller *worker.PlacementPoller
			if rtCfg.poller.Enabled() {
				poller, err = rtCfg.poller.Configure(rt.uc.Automation)
				if err != nil {
					return err
				}
				if err := poller.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start placement poller")
				}
			} else {
				logging.Default().Warn("Placement poller disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(rt.uc, httpctrl.WithMetrics(enableMetrics)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "metrics", enableMetrics)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				if poller != nil {
					poller.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the poller first so no automation starts during shutdown
				if poller != nil {
					poller.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
