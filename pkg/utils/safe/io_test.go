package safe_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/partnerflow/partnerflow/pkg/utils/safe"
)

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("already closed") }

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func captureLogs(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logging.With(context.Background(), logger), &buf
}

func TestClose(t *testing.T) {
	ctx, buf := captureLogs(t)
	safe.Close(ctx, nil)
	gt.Value(t, buf.Len()).Equal(0)

	safe.Close(ctx, failingCloser{})
	gt.String(t, buf.String()).Contains("already closed")
}

func TestWrite(t *testing.T) {
	ctx, buf := captureLogs(t)

	var out bytes.Buffer
	safe.Write(ctx, &out, []byte("id,type\n"))
	gt.Value(t, out.String()).Equal("id,type\n")

	safe.Write(ctx, failingWriter{}, []byte("x"))
	gt.String(t, buf.String()).Contains("broken pipe")
}

func TestCopy(t *testing.T) {
	ctx, buf := captureLogs(t)

	var out bytes.Buffer
	n := safe.Copy(ctx, &out, strings.NewReader("id,type\n1,onboarding\n"))
	gt.Value(t, n).Equal(int64(21))
	gt.Value(t, buf.Len()).Equal(0)

	safe.Copy(ctx, failingWriter{}, strings.NewReader("data"))
	gt.String(t, buf.String()).Contains("failed to stream body")
}
