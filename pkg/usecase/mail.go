package usecase

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

//go:embed mail/sop_offboarding.md
var sopOffboardingTmpl string

//go:embed mail/it_offboarding.md
var itOffboardingTmpl string

var mailTemplates = map[types.EmailActivityType]*template.Template{
	types.EmailActivitySOPOffboarding: template.Must(template.New("sop_offboarding").Parse(sopOffboardingTmpl)),
	types.EmailActivityITOffboarding:  template.Must(template.New("it_offboarding").Parse(itOffboardingTmpl)),
}

var mailSubjects = map[types.EmailActivityType]string{
	types.EmailActivitySOPOffboarding: "Offboarding: %s from %s",
	types.EmailActivityITOffboarding:  "Access revocation: %s from %s",
}

type mailData struct {
	FellowName  string
	FellowEmail string
	PartnerID   string
	PartnerName string
	PlacementID string
	EndDate     string
}

func buildOffboardingMail(kind types.EmailActivityType, a *model.Automation, to []string) (*model.Mail, error) {
	tmpl, ok := mailTemplates[kind]
	if !ok {
		return nil, goerr.New("unknown mail kind", goerr.V("kind", kind))
	}

	var body strings.Builder
	if err := tmpl.Execute(&body, mailData{
		FellowName:  a.FellowName,
		FellowEmail: a.FellowEmail,
		PartnerID:   a.PartnerID,
		PartnerName: a.PartnerName,
		PlacementID: a.PlacementID,
		EndDate:     a.EndDate,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render mail", goerr.V("kind", kind))
	}

	return &model.Mail{
		To:      to,
		Subject: fmt.Sprintf(mailSubjects[kind], a.FellowName, a.PartnerName),
		Body:    body.String(),
		Kind:    kind,
	}, nil
}
