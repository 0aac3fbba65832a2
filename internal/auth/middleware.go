package auth

import (
	"net/http"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/transport"
	"github.com/frahmantamala/request-routing/internal/transport/middleware"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

var _ middleware.TokenVerifier = (*Service)(nil)

// RequireRole rejects requests without a valid bearer token (401) or whose
// token role is not one of roles (403). The principal is stored in the
// request context for handlers.
func RequireRole(verifier middleware.TokenVerifier, base *transport.BaseHandler, roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := verifier.VerifyToken(transport.BearerToken(r))
			if err != nil {
				base.WriteAppError(w, r, err)
				return
			}

			if _, ok := allowed[Role(principal.Role)]; !ok {
				logger.From(r.Context()).Warn("access denied: role not allowed",
					"email", principal.Email,
					"role", principal.Role)
				base.WriteAppError(w, r, internal.ErrForbiddenRole)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "actor", principal.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
