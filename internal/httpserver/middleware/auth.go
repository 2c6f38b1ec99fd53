package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/davidbz/bridge/internal/auth"
	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/httpserver/apierror"
	"github.com/davidbz/bridge/internal/observability"
)

const protectedPrefix = "/v1/"

// Auth rejects /v1 requests without a valid bearer token and stores the token owner in
// the request context. Other paths pass through unauthenticated.
func Auth(gate *auth.Gate) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, protectedPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			user, err := gate.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				reason := "unknown"
				var authErr *domain.AuthError
				if errors.As(err, &authErr) {
					reason = authErr.Kind.String()
				}
				observability.AuthFailuresTotal.WithLabelValues(reason).Inc()
				apierror.Write(ctx, w, err)
				return
			}

			ctx = observability.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
