package errutil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("nil error returns nil", func(t *testing.T) {
		gt.Value(t, errutil.Handle(ctx, nil, "noop")).Nil()
	})

	t.Run("returns the same error", func(t *testing.T) {
		base := errors.New("boom")
		err := goerr.Wrap(base, "wrapped", goerr.V("partner_id", "p-1"))
		got := errutil.Handle(ctx, err, "failed")
		gt.Error(t, got).Is(base)
	})
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("bad input"), http.StatusBadRequest)

	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")

	var body map[string]string
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
	gt.Value(t, body["error"]).Equal("bad input")
}
