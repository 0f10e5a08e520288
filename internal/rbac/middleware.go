package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/shared"
)

// Middleware wires token authentication and role checks for HTTP handlers.
type Middleware struct {
	Tokens *shared.TokenManager
	Logger *slog.Logger
}

// RequireKind verifies the bearer token and rejects principals of a different
// kind. The resolved principal is attached to the request context.
func (m Middleware) RequireKind(kind shared.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.RespondError(w, httpx.Fail(httpx.ErrUnauthorized, "Missing or malformed authorization header"))
				return
			}
			principal, err := m.Tokens.Verify(raw)
			if err != nil {
				httpx.RespondError(w, httpx.Fail(httpx.ErrUnauthorized, "Invalid or expired token"))
				return
			}
			if principal.Kind != kind {
				if m.Logger != nil {
					m.Logger.Warn("token kind mismatch",
						slog.String("want", string(kind)),
						slog.String("got", string(principal.Kind)))
				}
				httpx.RespondError(w, httpx.Fail(httpx.ErrUnauthorized, "Invalid or expired token"))
				return
			}
			ctx := shared.ContextWithPrincipal(r.Context(), &principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles ensures the authenticated principal carries at least one of the
// listed roles. An empty list means any authenticated principal may proceed.
// It must run after RequireKind so the principal is already in context.
func (m Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	normalized := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, httpx.Fail(httpx.ErrUnauthorized, "Missing or malformed authorization header"))
				return
			}
			if len(normalized) == 0 || HasAnyRole(principal.Roles, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, httpx.Fail(httpx.ErrForbidden, "Insufficient role"))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
