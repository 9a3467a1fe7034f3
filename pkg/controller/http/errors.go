package http

import (
	"errors"
	"net/http"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/partnerflow/partnerflow/pkg/utils/errutil"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
)

var errBadRequest = errors.New("bad request")

// handleError maps domain errors to status codes. Invalid dates are answered
// with the fixed message clients match on.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, model.ErrInvalidDateFormat):
		logging.From(ctx).Info("invalid date filter", "error", err.Error(), "query", r.URL.RawQuery)
		errutil.WriteJSONError(w, http.StatusBadRequest, model.ErrInvalidDateFormat.Error())
	case errors.Is(err, errBadRequest), errors.Is(err, usecase.ErrInvalidJobType):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrUnauthenticated):
		errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized)
	case errors.Is(err, model.ErrAutomationNotFound), errors.Is(err, model.ErrReportNotFound):
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
	default:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
	}
}
