package interfaces

import (
	"context"
	"io"
)

// ReportStore keeps generated reports by ID
type ReportStore interface {
	Put(ctx context.Context, id string, data []byte) error
	// Open returns a reader for the report. Returns an error wrapping
	// model.ErrReportNotFound when the ID is unknown.
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}
