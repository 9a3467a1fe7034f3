package http

import (
	"net/http"

	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/usecase"
)

func dashboardHandler(uc *usecase.DashboardUseCase, query types.DashboardQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates := parseDateQuery(r)
		result, err := uc.Query(r.Context(), query, usecase.DashboardRequest{
			StartDate: dates.StartDate,
			EndDate:   dates.EndDate,
			Page:      parsePage(r),
		})
		if err != nil {
			handleError(w, r, err)
			return
		}

		if result.Pagination != nil {
			writeJSON(w, r, http.StatusOK, paginatedResponse{Data: result.Data, Pagination: *result.Pagination})
			return
		}
		writeJSON(w, r, http.StatusOK, dataResponse{Data: result.Data})
	}
}
