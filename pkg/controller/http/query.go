package http

import (
	"net/http"
	"strconv"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// Date filters are sent as date[startDate] and date[endDate]
const (
	queryStartDate = "date[startDate]"
	queryEndDate   = "date[endDate]"
)

type dateQuery struct {
	StartDate string
	EndDate   string
}

func parseDateQuery(r *http.Request) dateQuery {
	q := r.URL.Query()
	return dateQuery{
		StartDate: q.Get(queryStartDate),
		EndDate:   q.Get(queryEndDate),
	}
}

// parsePage reads limit and page. Missing or malformed values fall back to
// the defaults.
func parsePage(r *http.Request) model.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))
	return model.NewPage(limit, page)
}

type dataResponse struct {
	Data any `json:"data"`
}

type paginatedResponse struct {
	Data       any              `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}
