package model

import (
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

// Mail is one message handed to a Mailer
type Mail struct {
	To      []string                `json:"to" masq:"secret"`
	Subject string                  `json:"subject"`
	Body    string                  `json:"body"`
	Kind    types.EmailActivityType `json:"kind"`
}
