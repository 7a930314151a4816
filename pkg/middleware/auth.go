package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/httpapi"
)

// TokenCookie carries the bearer token for browser sessions and websockets,
// which cannot set an Authorization header.
const TokenCookie = "hrdesk_token"

// LoginPath is where unauthenticated HTML requests are redirected.
const LoginPath = "/login"

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authorize parses the bearer token, when present, into an AuthState on the
// request context. Invalid tokens are treated as absent.
func Authorize(issuer *authn.Issuer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			state, err := issuer.Parse(raw)
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Debug("rejected bearer token")
				next.ServeHTTP(w, r)
				return
			}
			ctx := composables.WithAuthState(r.Context(), state)
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without an AuthState: 401 JSON for API
// paths, a redirect to the login page otherwise.
func RequireAuth() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseAuthState(r.Context()); err == nil {
				next.ServeHTTP(w, r)
				return
			}
			if IsAPIPath(r.URL.Path) {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required",
					map[string]string{"request_id": composables.UseRequestID(r.Context())})
				return
			}
			q := url.Values{"next": {r.URL.RequestURI()}}
			http.Redirect(w, r, LoginPath+"?"+q.Encode(), http.StatusFound)
		})
	}
}
