package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/budget-be/internal/apperr"
	"github.com/hongminglow/budget-be/internal/auth"
	"github.com/hongminglow/budget-be/internal/http/respond"
	"github.com/hongminglow/budget-be/internal/logger"
)

// TokenAuthenticator verifies bearer tokens.
type TokenAuthenticator interface {
	AuthenticateToken(token string) (*auth.Claims, error)
}

// JWTAuth returns middleware that validates a Bearer token from the Authorization header.
// Authenticated requests carry a context logger tagged with the caller's user id.
func JWTAuth(authn TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Failure(w, r, apperr.Unauthorized("missing authorization header"))
				return
			}
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				respond.Failure(w, r, apperr.Unauthorized("invalid authorization format"))
				return
			}
			claims, err := authn.AuthenticateToken(strings.TrimSpace(token))
			if err != nil {
				respond.Failure(w, r, err)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				respond.Failure(w, r, apperr.Unauthorized(auth.MsgTokenInvalid))
				return
			}

			log := logger.FromContext(r.Context()).With(slog.Int64("user_id", userID))
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
		})
	}
}
