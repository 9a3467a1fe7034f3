package mailer

import (
	"time"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

func NewEnvelope(mail *model.Mail, now time.Time) Envelope {
	return newEnvelope(mail, now)
}

func RoutingKey(prefix string, mail *model.Mail) string {
	return routingKey(prefix, mail)
}
