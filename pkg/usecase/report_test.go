package usecase_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/repository/memory"
	"github.com/partnerflow/partnerflow/pkg/service/report"
	"github.com/partnerflow/partnerflow/pkg/usecase"
)

func TestReportGenerateAndOpen(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.New()
	seedAutomations(t, repo, base)

	store := report.NewMemory()
	uc := usecase.New(repo,
		usecase.WithReportStore(store),
		usecase.WithClock(func() time.Time { return base.Add(24 * time.Hour) }),
	)
	ctx := context.Background()

	id, err := uc.Report.Generate(ctx, "2024-05-01", "")
	gt.NoError(t, err).Required()
	gt.String(t, id).NotEqual("")

	r, err := uc.Report.Open(ctx, id)
	gt.NoError(t, err).Required()
	defer r.Close()

	records, err := csv.NewReader(r).ReadAll()
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(5).Required()
	gt.Value(t, records[0]).Equal(model.ReportHeader)
	gt.Value(t, records[1][1]).Equal("offboarding")
	gt.Value(t, records[1][4]).Equal("P-2")
	gt.Value(t, records[1][6]).Equal("failure")

	t.Run("invalid date", func(t *testing.T) {
		_, err := uc.Report.Generate(ctx, "05/01/2024", "")
		gt.Error(t, err).Is(model.ErrInvalidDateFormat)
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := uc.Report.Open(ctx, "not-a-uuid")
		gt.Error(t, err).Is(model.ErrReportNotFound)

		_, err = uc.Report.Open(ctx, "2b1f8f0e-3f7b-4c8b-9a63-2d0c1a0f5e11")
		gt.Error(t, err).Is(model.ErrReportNotFound)
	})
}

func TestEncodeReport(t *testing.T) {
	data, err := usecase.EncodeReport([]*model.Automation{
		{ID: 7, PartnerName: `Acme, "Inc"`, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	})
	gt.NoError(t, err).Required()

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	gt.NoError(t, err).Required()
	gt.Value(t, records[1][0]).Equal("7")
	gt.Value(t, records[1][5]).Equal(`Acme, "Inc"`)
	gt.Value(t, records[1][9]).Equal("2024-05-01T00:00:00Z")
}

func TestBuildOffboardingMail(t *testing.T) {
	a := &model.Automation{
		FellowName:  "Ada Lovelace",
		FellowEmail: "ada@example.com",
		PartnerID:   "P-1",
		PartnerName: "Payoff",
		PlacementID: "PL-1",
	}

	mail, err := usecase.BuildOffboardingMail(types.EmailActivityITOffboarding, a, []string{"it@example.com"})
	gt.NoError(t, err).Required()
	gt.Value(t, mail.Subject).Equal("Access revocation: Ada Lovelace from Payoff")
	gt.String(t, mail.Body).Contains("ada@example.com")
	gt.Bool(t, strings.Contains(mail.Body, "End date")).False()

	_, err = usecase.BuildOffboardingMail(types.EmailActivityType("welcome"), a, nil)
	gt.Value(t, err).NotNil()
}
