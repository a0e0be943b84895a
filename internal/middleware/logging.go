package middleware

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/manwah-pos/api/internal/logging"
)

// RequestLogger puts a logger tagged with the chi request id into the request
// context. Mount it after chimw.RequestID.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With("request_id", chimw.GetReqID(r.Context()), "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(logging.WithCtx(r.Context(), l)))
		})
	}
}
