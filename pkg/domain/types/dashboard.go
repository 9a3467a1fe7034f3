package types

// DashboardQuery selects which dashboard aggregation a request runs
type DashboardQuery int

const (
	DashboardQueryUpselling DashboardQuery = iota + 1
	DashboardQueryPartnerStats
)

// String returns the name of the query used in logs
func (q DashboardQuery) String() string {
	switch q {
	case DashboardQueryUpselling:
		return "upselling"
	case DashboardQueryPartnerStats:
		return "partnerStats"
	default:
		return "unknown"
	}
}
