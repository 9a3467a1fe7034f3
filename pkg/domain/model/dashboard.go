package model

import (
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

// ErrInvalidDateFormat is returned when a date filter is not ISO 8601. The
// message is shown to API clients as is.
var ErrInvalidDateFormat = goerr.New("Invalid date format provided please provide date in iso 8601 string")

const dateOnlyLayout = "2006-01-02"

// ParseDate accepts a full RFC 3339 timestamp or a calendar date
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, goerr.Wrap(ErrInvalidDateFormat, "failed to parse date", goerr.V("date", s))
}

// DateRange is an inclusive range of creation times
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange validates both raw bounds before using either of them. An
// absent start means the beginning of time and an absent end means now.
func NewDateRange(startDate, endDate string, now time.Time) (DateRange, error) {
	var r DateRange
	if startDate != "" {
		from, err := ParseDate(startDate)
		if err != nil {
			return DateRange{}, err
		}
		r.From = from
	}

	r.To = now
	if endDate != "" {
		to, err := ParseDate(endDate)
		if err != nil {
			return DateRange{}, err
		}
		r.To = to
	}

	return r, nil
}

// Page is a one-based page request
type Page struct {
	Limit int
	Page  int
}

const (
	DefaultPageLimit = 10
	DefaultPage      = 1
)

// NewPage applies the defaults to non-positive values
func NewPage(limit, page int) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	return Page{Limit: limit, Page: page}
}

// Offset is the number of rows skipped before the page
func (p Page) Offset() int {
	return p.Limit * (p.Page - 1)
}

// Pagination is the metadata returned with a paginated listing
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	NumberOfPages int  `json:"numberOfPages"`
	NextPage      *int `json:"nextPage"`
	PrevPage      *int `json:"prevPage"`
	DataCount     int  `json:"dataCount"`
}

// NewPagination computes page metadata for count rows
func NewPagination(p Page, count int) Pagination {
	pages := 0
	if count > 0 {
		pages = (count + p.Limit - 1) / p.Limit
	}

	meta := Pagination{
		CurrentPage:   p.Page,
		NumberOfPages: pages,
		DataCount:     count,
	}
	if p.Page < pages {
		next := p.Page + 1
		meta.NextPage = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		meta.PrevPage = &prev
	}
	return meta
}

// UpsellingPartner is a partner ranked by the number of fellows onboarded
type UpsellingPartner struct {
	PartnerID   string `json:"partnerId"`
	PartnerName string `json:"partnerName"`
	Count       int    `json:"count"`
}

// PartnerStats counts automations and distinct partners in a range
type PartnerStats struct {
	Onboarding  int `json:"onboarding"`
	Offboarding int `json:"offboarding"`
	Partners    int `json:"partners"`
}

// AutomationStats counts automation outcomes for one job type
type AutomationStats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// RankUpsellingPartners counts onboarding automations per partner, highest
// count first and ties broken by partner ID
func RankUpsellingPartners(automations []*Automation) []*UpsellingPartner {
	byPartner := make(map[string]*UpsellingPartner)
	for _, a := range automations {
		if a.Type != types.JobTypeOnboarding {
			continue
		}
		entry, ok := byPartner[a.PartnerID]
		if !ok {
			entry = &UpsellingPartner{PartnerID: a.PartnerID}
			byPartner[a.PartnerID] = entry
		}
		if a.PartnerName > entry.PartnerName {
			entry.PartnerName = a.PartnerName
		}
		entry.Count++
	}

	ranked := make([]*UpsellingPartner, 0, len(byPartner))
	for _, entry := range byPartner {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].PartnerID < ranked[j].PartnerID
	})
	return ranked
}

// CountPartnerStats counts automations by job type and the distinct partners involved
func CountPartnerStats(automations []*Automation) *PartnerStats {
	stats := &PartnerStats{}
	partners := make(map[string]struct{})
	for _, a := range automations {
		switch a.Type {
		case types.JobTypeOnboarding:
			stats.Onboarding++
		case types.JobTypeOffboarding:
			stats.Offboarding++
		}
		partners[a.PartnerID] = struct{}{}
	}
	stats.Partners = len(partners)
	return stats
}
