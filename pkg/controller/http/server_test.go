package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/partnerflow/partnerflow/pkg/controller/http"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/repository/memory"
	"github.com/partnerflow/partnerflow/pkg/usecase"
)

var testNow = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...usecase.Option) (*httpctrl.Server, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	ctx := context.Background()

	rows := []struct {
		partnerID string
		name      string
		at        time.Time
	}{
		{"P-1", "Payoff", testNow.Add(-20 * time.Hour)},
		{"P-1", "Payoff", testNow.Add(-10 * time.Hour)},
		{"P-2", "Globex", testNow.Add(-5 * time.Hour)},
	}
	for _, r := range rows {
		_, err := repo.Automation().Create(ctx, &model.Automation{
			FellowID:    "F-1",
			FellowName:  "Ada",
			PartnerID:   r.partnerID,
			PartnerName: r.name,
			Type:        types.JobTypeOnboarding,
			SlackActivities: []model.SlackActivity{
				{Status: types.ActivityStatusSuccess, Type: types.SlackActivityInvite},
			},
			NokoActivities: []model.NokoActivity{
				{Status: types.ActivityStatusSuccess, Type: types.NokoActivityProjectAssignment},
			},
			CreatedAt: r.at,
		})
		gt.NoError(t, err).Required()
	}

	opts = append(opts, usecase.WithClock(func() time.Time { return testNow }))
	uc := usecase.New(repo, opts...)
	return httpctrl.New(uc, httpctrl.WithClock(func() time.Time { return testNow })), repo
}

func get(t *testing.T, srv http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(t, srv, "/health", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"ok"`)
}

func TestDashboardEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("invalid date returns the fixed message", func(t *testing.T) {
		w := get(t, srv, "/dashboard/upselling?"+url.Values{"date[startDate]": {"yesterday"}}.Encode(), nil)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)

		var body map[string]string
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body["error"]).Equal("Invalid date format provided please provide date in iso 8601 string")
	})

	t.Run("upselling is paginated", func(t *testing.T) {
		q := url.Values{"date[startDate]": {"2024-05-01"}, "limit": {"1"}, "page": {"1"}}
		w := get(t, srv, "/dashboard/upselling?"+q.Encode(), nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var body struct {
			Data       []model.UpsellingPartner `json:"data"`
			Pagination model.Pagination         `json:"pagination"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Array(t, body.Data).Length(1).Required()
		gt.Value(t, body.Data[0].PartnerID).Equal("P-1")
		gt.Value(t, body.Data[0].Count).Equal(2)
		gt.Value(t, body.Pagination.NumberOfPages).Equal(2)
		gt.Value(t, *body.Pagination.NextPage).Equal(2)
	})

	t.Run("partner stats has no pagination", func(t *testing.T) {
		w := get(t, srv, "/dashboard/partner-stats", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var body map[string]json.RawMessage
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		_, hasPagination := body["pagination"]
		gt.Bool(t, hasPagination).False()

		var stats model.PartnerStats
		gt.NoError(t, json.Unmarshal(body["data"], &stats)).Required()
		gt.Value(t, stats).Equal(model.PartnerStats{Onboarding: 3, Partners: 2})
	})
}

func TestAutomationEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("list filters by type", func(t *testing.T) {
		w := get(t, srv, "/automation/?type=onboarding", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var body struct {
			Data       []model.AutomationView `json:"data"`
			Pagination model.Pagination       `json:"pagination"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Array(t, body.Data).Length(3)
		gt.Value(t, body.Pagination.DataCount).Equal(3)
	})

	t.Run("unknown type is a bad request", func(t *testing.T) {
		w := get(t, srv, "/automation/?type=sideboarding", nil)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("stats", func(t *testing.T) {
		w := get(t, srv, "/automation/stats", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var body struct {
			Data map[types.JobType]model.AutomationStats `json:"data"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Data[types.JobTypeOnboarding]).Equal(model.AutomationStats{Total: 3, Success: 3})
	})

	t.Run("retry of a succeeded automation returns it", func(t *testing.T) {
		w := get(t, srv, "/automation/1", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var body struct {
			Data model.AutomationView `json:"data"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Data.ID).Equal(int64(1))
		gt.Value(t, body.Data.SlackAutomations.Status).Equal(types.ActivityStatusSuccess)
	})

	t.Run("retry of an unknown automation", func(t *testing.T) {
		w := get(t, srv, "/automation/999", nil)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("retry with a malformed id", func(t *testing.T) {
		w := get(t, srv, "/automation/abc", nil)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})
}

func TestReportEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/automation/downloadReport?"+url.Values{"date[startDate]": {"2024-05-01"}}.Encode(), nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)

	var created struct {
		ReportID string `json:"reportId"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &created)).Required()
	gt.String(t, created.ReportID).NotEqual("")

	t.Run("fetch streams the csv", func(t *testing.T) {
		w := get(t, srv, "/automation/fetchReport?id="+created.ReportID, nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("text/csv")
		gt.String(t, w.Header().Get("Content-Disposition")).Contains(created.ReportID)
		gt.String(t, w.Body.String()).Contains("id,type,fellowId")
		gt.String(t, w.Body.String()).Contains("Globex")
	})

	t.Run("unknown report", func(t *testing.T) {
		w := get(t, srv, "/automation/fetchReport?id=00000000-0000-0000-0000-000000000000", nil)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		w := get(t, srv, "/automation/fetchReport", nil)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})
}

func TestAuthMiddleware(t *testing.T) {
	secret := []byte("test-secret-test-secret-test-sec")
	authUC, err := usecase.NewAuthUseCase(usecase.WithHMACSecret(secret))
	gt.NoError(t, err).Required()
	srv, _ := newTestServer(t, usecase.WithAuth(authUC))

	t.Run("health is public", func(t *testing.T) {
		w := get(t, srv, "/health", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
	})

	t.Run("missing token", func(t *testing.T) {
		w := get(t, srv, "/automation/stats", nil)
		gt.Value(t, w.Code).Equal(http.StatusUnauthorized)
		gt.String(t, w.Body.String()).Contains("Authentication required")
	})

	t.Run("invalid token", func(t *testing.T) {
		w := get(t, srv, "/automation/stats", http.Header{"Authorization": {"Bearer not-a-jwt"}})
		gt.Value(t, w.Code).Equal(http.StatusUnauthorized)
		gt.String(t, w.Body.String()).Contains("Invalid authentication token")
	})

	t.Run("valid token", func(t *testing.T) {
		tok, err := jwt.NewBuilder().Subject("U1").Expiration(time.Now().Add(time.Hour)).Build()
		gt.NoError(t, err).Required()
		signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, secret))
		gt.NoError(t, err).Required()

		w := get(t, srv, "/automation/stats", http.Header{"Authorization": {"Bearer " + string(signed)}})
		gt.Value(t, w.Code).Equal(http.StatusOK)
	})
}

func TestPrincipalContext(t *testing.T) {
	ctx := httpctrl.ContextWithPrincipal(context.Background(), &model.Principal{Subject: "U1"})
	gt.Value(t, httpctrl.PrincipalFromContext(ctx).Subject).Equal("U1")
	gt.Value(t, httpctrl.PrincipalFromContext(context.Background())).Nil()
}
