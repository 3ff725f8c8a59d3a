package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/srpgate/srpgate/internal/logging"
	"github.com/srpgate/srpgate/pkg/protocol"
)

// ErrorHandler returns middleware that recovers from handler panics.
func ErrorHandler(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", map[string]any{
						"error": err,
						"path":  r.URL.Path,
					})
					WriteJSONError(w, protocol.NewSystemError())
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// The status code is already on the wire; an encode failure here
	// cannot be reported to the client.
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONError writes an error body with the status its code maps to.
func WriteJSONError(w http.ResponseWriter, err *protocol.ErrorResponse) {
	WriteJSON(w, err, HTTPStatusForErrorCode(err.Code))
}

// HTTPStatusForErrorCode maps protocol error codes to HTTP status codes.
func HTTPStatusForErrorCode(code protocol.ErrorCode) int {
	switch code {
	case protocol.ErrCodeInvalidRequest:
		return http.StatusBadRequest

	case protocol.ErrCodeAuthenticationFailed,
		protocol.ErrCodeUnknownHandshake,
		protocol.ErrCodeSessionExpired,
		protocol.ErrCodeSessionInvalid,
		protocol.ErrCodeUnauthorized:
		return http.StatusUnauthorized

	case protocol.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests

	case protocol.ErrCodeSystemError:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
