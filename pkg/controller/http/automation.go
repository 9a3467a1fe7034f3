package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/partnerflow/partnerflow/pkg/utils/safe"
)

func listAutomationsHandler(uc *usecase.AutomationUseCase, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates := parseDateQuery(r)
		dateRange, err := model.NewDateRange(dates.StartDate, dates.EndDate, now())
		if err != nil {
			handleError(w, r, err)
			return
		}

		var jobType types.JobType
		if raw := r.URL.Query().Get("type"); raw != "" {
			parsed, err := types.ParseJobType(raw)
			if err != nil {
				handleError(w, r, goerr.Wrap(errors.Join(errBadRequest, err), "invalid type query"))
				return
			}
			jobType = parsed
		}

		views, pagination, err := uc.List(r.Context(), dateRange, jobType, parsePage(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, paginatedResponse{Data: views, Pagination: pagination})
	}
}

func automationStatsHandler(uc *usecase.AutomationUseCase, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates := parseDateQuery(r)
		dateRange, err := model.NewDateRange(dates.StartDate, dates.EndDate, now())
		if err != nil {
			handleError(w, r, err)
			return
		}

		stats, err := uc.Stats(r.Context(), dateRange)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, dataResponse{Data: stats})
	}
}

func retryAutomationHandler(uc *usecase.AutomationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			handleError(w, r, goerr.Wrap(errBadRequest, "invalid automation ID", goerr.V("id", raw)))
			return
		}

		automation, err := uc.Retry(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, dataResponse{Data: automation.View()})
	}
}

type reportResponse struct {
	ReportID string `json:"reportId"`
}

func generateReportHandler(uc *usecase.ReportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates := parseDateQuery(r)
		id, err := uc.Generate(r.Context(), dates.StartDate, dates.EndDate)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, reportResponse{ReportID: id})
	}
}

func fetchReportHandler(uc *usecase.ReportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			handleError(w, r, goerr.Wrap(errBadRequest, "report ID is required"))
			return
		}

		reader, err := uc.Open(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		defer safe.Close(r.Context(), reader)

		w.Header().Set("Content-Type", model.ReportContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="automation-report-`+id+`.csv"`)
		w.WriteHeader(http.StatusOK)
		safe.Copy(r.Context(), w, reader)
	}
}
