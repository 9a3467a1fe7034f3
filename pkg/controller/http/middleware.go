package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/usecase"
	"github.com/partnerflow/partnerflow/pkg/utils/errutil"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type principalCtxKey struct{}

// ContextWithPrincipal stores the authenticated caller in ctx
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the authenticated caller, or nil
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalCtxKey{}).(*model.Principal)
	return p
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// authMiddleware validates the bearer token of protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// NoAuthn mode or no auth configured
			if authUC == nil || authUC.IsNoAuthn() {
				principal := &model.Principal{Subject: usecase.NoAuthnSubject}
				next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
				return
			}

			token := bearerToken(r)
			if token == "" {
				errutil.WriteJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			principal, err := authUC.Authenticate(r.Context(), token)
			if err != nil {
				logging.From(r.Context()).Warn("authentication failed", "error", err.Error(), "path", r.URL.Path)
				errutil.WriteJSONError(w, http.StatusUnauthorized, "Invalid authentication token")
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			ctx = logging.With(ctx, logging.From(ctx).With("sub", principal.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
