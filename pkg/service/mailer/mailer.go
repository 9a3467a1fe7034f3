package mailer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
)

// EnvelopeType is the type tag of published mail jobs
const EnvelopeType = "partnerflow.mail.v1"

// Meta describes a published mail job
type Meta struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Envelope is the JSON document published for every mail
type Envelope struct {
	Meta    Meta        `json:"meta"`
	Payload *model.Mail `json:"payload"`
}

func newEnvelope(mail *model.Mail, now time.Time) Envelope {
	return Envelope{
		Meta: Meta{
			ID:        uuid.NewString(),
			Type:      EnvelopeType,
			CreatedAt: now.UTC(),
		},
		Payload: mail,
	}
}

// Logger only logs mails. It is used when no broker is configured.
type Logger struct{}

var _ interfaces.Mailer = (*Logger)(nil)

// NewLogger creates a Mailer that logs instead of delivering
func NewLogger() *Logger {
	return &Logger{}
}

// Send logs the mail. Recipients are redacted by the logger.
func (x *Logger) Send(ctx context.Context, mail *model.Mail) error {
	logging.From(ctx).Info("mail not delivered, no broker configured",
		"mail", mail,
	)
	return nil
}
