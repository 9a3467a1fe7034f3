package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/partnerflow/partnerflow/pkg/utils/metrics"
	"github.com/partnerflow/partnerflow/pkg/utils/safe"
)

type Server struct {
	router  *chi.Mux
	authUC  AuthUseCase
	metrics bool
	now     func() time.Time
	uc      *usecase.UseCases
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithMetrics exposes the Prometheus registry at /metrics
func WithMetrics(enabled bool) Options {
	return func(s *Server) {
		s.metrics = enabled
	}
}

// WithClock replaces the clock used to close open-ended date filters
func WithClock(now func() time.Time) Options {
	return func(s *Server) {
		s.now = now
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		authUC:  uc.Auth,
		metrics: true,
		now:     time.Now,
		uc:      uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	if s.metrics {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))
		r.Get("/upselling", dashboardHandler(uc.Dashboard, types.DashboardQueryUpselling))
		r.Get("/partner-stats", dashboardHandler(uc.Dashboard, types.DashboardQueryPartnerStats))
	})

	r.Route("/automation", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))
		r.Get("/", listAutomationsHandler(uc.Automation, s.now))
		r.Get("/stats", automationStatsHandler(uc.Automation, s.now))
		r.Get("/downloadReport", generateReportHandler(uc.Report))
		r.Get("/fetchReport", fetchReportHandler(uc.Report))
		r.Get("/{id}", retryAutomationHandler(uc.Automation))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
