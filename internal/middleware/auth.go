package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vicu/vicu-api/internal/ctxkeys"
	"github.com/vicu/vicu-api/internal/model"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyJWT(token string) (string, error)
}

// Auth reads the bearer token and stores the caller identity in the context.
// Missing or invalid tokens continue as anonymous; handlers decide whether
// that is enough.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r.WithContext(ctxkeys.WithIdentity(r.Context(), model.Anonymous())))
				return
			}

			userID, err := verifier.VerifyJWT(token)
			if err != nil {
				slog.Debug("rejected bearer token", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r.WithContext(ctxkeys.WithIdentity(r.Context(), model.Anonymous())))
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), model.Authenticated(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Identity(r.Context()).IsAnonymous() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="vicu"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Inicia sesión para continuar"}`))
			return
		}
		next.ServeHTTP(w, r)
	}
}
