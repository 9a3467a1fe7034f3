package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrReportNotFound is returned when a stored report does not exist
var ErrReportNotFound = goerr.New("report not found")

// ReportContentType is the media type of generated reports
const ReportContentType = "text/csv"

// ReportHeader is the column order of an automation report
var ReportHeader = []string{
	"id", "type", "fellowId", "fellowName", "partnerId", "partnerName",
	"slackStatus", "emailStatus", "nokoStatus", "createdAt",
}
