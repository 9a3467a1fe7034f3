package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
)

// ReportUseCase exports automations as CSV reports
type ReportUseCase struct {
	repo  interfaces.Repository
	store interfaces.ReportStore
	now   func() time.Time
}

func NewReportUseCase(repo interfaces.Repository, store interfaces.ReportStore, now func() time.Time) *ReportUseCase {
	return &ReportUseCase{repo: repo, store: store, now: now}
}

// Generate writes every automation of the range into a new report and
// returns its ID
func (uc *ReportUseCase) Generate(ctx context.Context, startDate, endDate string) (string, error) {
	r, err := model.NewDateRange(startDate, endDate, uc.now())
	if err != nil {
		return "", err
	}

	automations, _, err := uc.repo.Automation().List(ctx, model.AutomationFilter{From: r.From, To: r.To})
	if err != nil {
		return "", goerr.Wrap(errors.Join(ErrPersistence, err), "failed to list automations for report")
	}

	data, err := encodeReport(automations)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := uc.store.Put(ctx, id, data); err != nil {
		return "", goerr.Wrap(err, "failed to store report", goerr.V("report_id", id))
	}

	logging.From(ctx).Info("report generated", "report_id", id, "rows", len(automations))
	return id, nil
}

// Open returns the stored report. The caller closes the reader.
func (uc *ReportUseCase) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, goerr.Wrap(model.ErrReportNotFound, "malformed report ID", goerr.V("report_id", id))
	}
	return uc.store.Open(ctx, id)
}

func encodeReport(automations []*model.Automation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(model.ReportHeader); err != nil {
		return nil, goerr.Wrap(err, "failed to write report header")
	}
	for _, a := range automations {
		row := []string{
			strconv.FormatInt(a.ID, 10),
			string(a.Type),
			a.FellowID,
			a.FellowName,
			a.PartnerID,
			a.PartnerName,
			string(a.SlackStatus()),
			string(a.EmailStatus()),
			string(a.NokoStatus()),
			a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, goerr.Wrap(err, "failed to write report row", goerr.V(AutomationIDKey, a.ID))
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush report")
	}
	return buf.Bytes(), nil
}
