package cli

import (
	"io"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

func PrintPartner(w io.Writer, partnerID, name string) error {
	return printPartner(w, &model.Partner{PartnerID: partnerID, Name: name})
}
