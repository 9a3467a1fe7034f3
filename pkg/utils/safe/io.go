package safe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/partnerflow/partnerflow/pkg/utils/logging"
)

// Close closes closer and only logs a failure. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close resource", slog.Any("error", err))
	}
}

// Write sends an already encoded response body. The status line is gone by
// the time the body is written, so a failure can only be logged.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if n, err := w.Write(data); err != nil {
		logging.From(ctx).Error("failed to write response body",
			slog.Any("error", err),
			slog.Int("written", n),
			slog.Int("size", len(data)),
		)
	}
}

// Copy streams src into dst and returns the number of bytes copied. A client
// that went away mid-stream is logged at debug level.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	n, err := io.Copy(dst, src)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, http.ErrHandlerTimeout):
		logging.From(ctx).Debug("stream aborted", slog.Any("error", err), slog.Int64("written", n))
	default:
		logging.From(ctx).Error("failed to stream body", slog.Any("error", err), slog.Int64("written", n))
	}
	return n
}
