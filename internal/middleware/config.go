package middleware

import (
	"net/http"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/ctxkeys"
)

// WithConfig places the sanitized config in the request context so
// handlers never see secrets.
func WithConfig(cfg *config.Config) Middleware {
	sanitized := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithConfig(r.Context(), sanitized)))
		})
	}
}
