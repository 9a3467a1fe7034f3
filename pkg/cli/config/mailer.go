package config

import (
	"log/slog"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/service/mailer"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Mailer holds the flags of the mail job queue
type Mailer struct {
	amqpURL     string
	exchange    string
	routePrefix string
	closeFunc   func() error
}

func (x *Mailer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mail-amqp-url",
			Usage:       "AMQP URL of the broker receiving mail jobs; mails are only logged when empty",
			Category:    "Mail",
			Destination: &x.amqpURL,
			Sources:     cli.EnvVars("PARTNERFLOW_MAIL_AMQP_URL"),
		},
		&cli.StringFlag{
			Name:        "mail-exchange",
			Usage:       "Topic exchange mail jobs are published to",
			Category:    "Mail",
			Value:       "partnerflow.mail",
			Destination: &x.exchange,
			Sources:     cli.EnvVars("PARTNERFLOW_MAIL_EXCHANGE"),
		},
		&cli.StringFlag{
			Name:        "mail-routing-key-prefix",
			Usage:       "Prefix of mail job routing keys",
			Category:    "Mail",
			Value:       mailer.DefaultRoutingKeyPrefix,
			Destination: &x.routePrefix,
			Sources:     cli.EnvVars("PARTNERFLOW_MAIL_ROUTING_KEY_PREFIX"),
		},
	}
}

func (x Mailer) LogValue() slog.Value {
	host := ""
	if u, err := url.Parse(x.amqpURL); err == nil {
		host = u.Host
	}
	return slog.GroupValue(
		slog.String("amqp-host", host),
		slog.String("exchange", x.exchange),
	)
}

// Configure connects to the broker, or falls back to logging mails
func (x *Mailer) Configure() (interfaces.Mailer, error) {
	if x.amqpURL == "" {
		logging.Default().Warn("Mail broker not configured, offboarding mails are only logged")
		return mailer.NewLogger(), nil
	}

	m, err := mailer.NewAMQP(x.amqpURL, x.exchange, mailer.WithRoutingKeyPrefix(x.routePrefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize mail publisher")
	}
	x.closeFunc = m.Close
	logging.Default().Info("Mail publisher enabled", "config", x)
	return m, nil
}

// Close closes the broker connection, if any
func (x *Mailer) Close() error {
	if x.closeFunc == nil {
		return nil
	}
	return x.closeFunc()
}
