package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/service/report"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Report holds the flags of the generated report store
type Report struct {
	bucket    string
	prefix    string
	closeFunc func() error
}

func (x *Report) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "report-gcs-bucket",
			Usage:       "Cloud Storage bucket for generated reports; reports are kept in memory when empty",
			Category:    "Report",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("PARTNERFLOW_REPORT_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "report-gcs-prefix",
			Usage:       "Object name prefix of generated reports",
			Category:    "Report",
			Value:       "reports",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("PARTNERFLOW_REPORT_GCS_PREFIX"),
		},
	}
}

func (x Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure creates the report store
func (x *Report) Configure(ctx context.Context) (interfaces.ReportStore, error) {
	if x.bucket == "" {
		logging.Default().Info("Using in-memory report store")
		return report.NewMemory(), nil
	}

	store, err := report.NewGCS(ctx, x.bucket, report.WithObjectPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize report store", goerr.V("bucket", x.bucket))
	}
	x.closeFunc = store.Close
	logging.Default().Info("Using Cloud Storage report store", "config", x)
	return store, nil
}

// Close releases the storage client, if any
func (x *Report) Close() error {
	if x.closeFunc == nil {
		return nil
	}
	return x.closeFunc()
}
