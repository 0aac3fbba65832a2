package middleware

import (
	"net/http"

	"github.com/frahmantamala/request-routing/internal/i18n"
)

// Locale picks the message language from Accept-Language.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := i18n.MatchLocale(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), locale)))
	})
}
