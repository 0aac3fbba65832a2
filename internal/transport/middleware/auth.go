package middleware

import (
	"net/http"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/transport"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

// TokenVerifier turns a bearer token into the caller identity.
type TokenVerifier interface {
	VerifyToken(token string) (internal.Principal, error)
}

// Identify attaches the caller identity when the request carries a valid
// bearer token. Requests without one, or with an invalid one, pass through
// anonymously.
func Identify(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := verifier.VerifyToken(token)
			if err != nil {
				logger.From(r.Context()).Debug("ignoring invalid bearer token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "actor", principal.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
