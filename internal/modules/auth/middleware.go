package auth

import (
	"net/http"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
)

// Middleware attaches the operator named by a bearer token. Requests without
// an Authorization header pass through anonymously; a bad token is rejected.
func Middleware(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				httpx.WriteError(w, r, "authorization header must be a bearer token", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			}
			op, err := svc.Verify(strings.TrimSpace(token))
			if err != nil {
				httpx.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), op)))
		})
	}
}

// RequireOperator rejects anonymous writes when required is set. Reads stay open.
func RequireOperator(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !required {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := OperatorFrom(r.Context()); !ok {
				httpx.WriteError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
