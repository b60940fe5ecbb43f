package httpx

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/lumamart/auth/pkg/slogx"
)

// Identity is the authenticated caller attached to a request context after
// successful bearer validation.
type Identity struct {
	PrincipalID string
	Role        string
	TokenID     string
	DeviceType  string
	Scopes      []string
}

// HasScope reports whether the identity carries the named capability, either
// directly or via the wildcard.
func (id Identity) HasScope(scope string) bool {
	return slices.Contains(id.Scopes, "*") || slices.Contains(id.Scopes, scope)
}

// BearerVerifier resolves an opaque bearer secret into an Identity.
type BearerVerifier interface {
	VerifyBearer(ctx context.Context, secret, clientIP string) (Identity, error)
}

type identityCtxKey struct{}

// IdentityFromContext returns the caller identity stashed by BearerAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// ContextWithIdentity injects an identity directly, for tests and internal
// dispatch.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// BearerAuth rejects requests without a valid bearer token and attaches the
// resolved Identity to the request context.
func BearerAuth(v BearerVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			secret := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			id, err := v.VerifyBearer(ctx, secret, IPKeyExtractor(r))
			if err != nil {
				log.Warn("bearer verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, id)))
		})
	}
}

// RequireScope gates a route on a single capability. Must run after
// BearerAuth.
func RequireScope(scope string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}
			if !id.HasScope(scope) {
				writeBearerScopeError(w, http.StatusForbidden, scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}

// RFC 6750 error response for insufficient scope.
func writeBearerScopeError(w http.ResponseWriter, code int, required ...string) {
	scope := strings.Join(required, " ")
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+scope+`"`)
	WriteJSON(w, code, map[string]string{
		"error":             "insufficient_scope",
		"error_description": "token is missing required scope: " + scope,
	})
}
