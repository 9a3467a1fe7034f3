package interfaces

import (
	"context"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// Mailer hands mail over for delivery
type Mailer interface {
	Send(ctx context.Context, mail *model.Mail) error
}
