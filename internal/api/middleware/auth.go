package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/srpgate/srpgate/internal/auth"
	"github.com/srpgate/srpgate/pkg/protocol"
)

// AuthMiddleware enforces bearer-token authentication on protected routes.
type AuthMiddleware struct {
	sessions *auth.SessionManager
}

// NewAuthMiddleware creates an authentication middleware.
func NewAuthMiddleware(sessions *auth.SessionManager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Require validates the "Authorization: Bearer <token>" header and places
// the session in the request context.
func (am *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			WriteJSONError(w, protocol.NewUnauthorizedError(err.Error()))
			return
		}

		session, err := am.sessions.ValidateSession(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrSessionExpired):
				WriteJSONError(w, protocol.NewError(protocol.ErrCodeSessionExpired, "Session token expired"))
			default:
				WriteJSONError(w, protocol.NewError(protocol.ErrCodeSessionInvalid, "Invalid session token"))
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// BearerToken extracts the bearer token from a request.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	if token == "" {
		return "", errors.New("missing session token")
	}
	return token, nil
}
