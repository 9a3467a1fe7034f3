package mailer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultRoutingKeyPrefix prefixes the mail kind to build the routing key
const DefaultRoutingKeyPrefix = "mail."

// AMQP publishes mail jobs to a topic exchange. A separate delivery worker
// consumes them and talks to the mail provider.
type AMQP struct {
	conn      *amqp.Connection
	exchange  string
	keyPrefix string
	now       func() time.Time
}

var _ interfaces.Mailer = (*AMQP)(nil)

// AMQPOption configures an AMQP mailer
type AMQPOption func(*AMQP)

// WithRoutingKeyPrefix sets the prefix of routing keys
func WithRoutingKeyPrefix(prefix string) AMQPOption {
	return func(a *AMQP) {
		a.keyPrefix = prefix
	}
}

// NewAMQP connects to the broker and declares the durable topic exchange
func NewAMQP(url, exchange string, opts ...AMQPOption) (*AMQP, error) {
	if exchange == "" {
		return nil, goerr.New("AMQP exchange is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to AMQP broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to open AMQP channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to declare exchange", goerr.V("exchange", exchange))
	}

	a := &AMQP{
		conn:      conn,
		exchange:  exchange,
		keyPrefix: DefaultRoutingKeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Send publishes the mail as a persistent JSON envelope and waits for the
// broker confirmation
func (a *AMQP) Send(ctx context.Context, mail *model.Mail) error {
	env := newEnvelope(mail, a.now())
	body, err := json.Marshal(env)
	if err != nil {
		return goerr.Wrap(err, "failed to encode mail envelope")
	}

	ch, err := a.conn.Channel()
	if err != nil {
		return goerr.Wrap(err, "failed to open AMQP channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Confirm(false); err != nil {
		return goerr.Wrap(err, "failed to enable publisher confirms")
	}

	key := routingKey(a.keyPrefix, mail)
	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, a.exchange, key, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.Meta.ID,
			Type:         EnvelopeType,
			Timestamp:    env.Meta.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		return goerr.Wrap(err, "failed to publish mail", goerr.V("routing_key", key))
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to wait for publish confirmation", goerr.V("routing_key", key))
	}
	if !acked {
		return goerr.New("mail was nacked by broker", goerr.V("routing_key", key))
	}

	logging.From(ctx).Info("mail published",
		"exchange", a.exchange,
		"routing_key", key,
		"message_id", env.Meta.ID,
	)
	return nil
}

// Close closes the broker connection
func (a *AMQP) Close() error {
	if err := a.conn.Close(); err != nil {
		return goerr.Wrap(err, "failed to close AMQP connection")
	}
	return nil
}

func routingKey(prefix string, mail *model.Mail) string {
	kind := string(mail.Kind)
	if kind == "" {
		kind = "generic"
	}
	return prefix + kind
}
