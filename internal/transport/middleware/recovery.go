package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/i18n"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

// Recovery turns a panic into a 500 error envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logger.From(r.Context()).Error("panic recovered",
					"error", err,
					"method", r.Method,
					"url", r.URL.String(),
					"stack", string(debug.Stack()))

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(internal.Response{
					Success: false,
					Code:    internal.ErrCodeInternal,
					Message: i18n.TOr(r.Context(), string(internal.ErrCodeInternal), "internal server error"),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
