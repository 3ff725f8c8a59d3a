package protocol

import "fmt"

// ErrorCode identifies an API error class.
type ErrorCode string

// API error codes.
const (
	// ErrCodeAuthenticationFailed indicates the SRP proof did not verify.
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	// ErrCodeUnknownHandshake indicates the handshake ID is missing, expired,
	// or already consumed.
	ErrCodeUnknownHandshake ErrorCode = "UNKNOWN_HANDSHAKE"
	// ErrCodeSessionExpired indicates the session token has expired.
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"
	// ErrCodeSessionInvalid indicates the session token is invalid.
	ErrCodeSessionInvalid ErrorCode = "SESSION_INVALID"
	// ErrCodeRateLimitExceeded indicates too many failed attempts.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeUnauthorized indicates the request carries no valid session.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInvalidRequest indicates the request payload is malformed.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeSystemError indicates an internal failure.
	ErrCodeSystemError ErrorCode = "SYSTEM_ERROR"
)

// ErrorResponse is the standard API error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new ErrorResponse.
func NewError(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{Code: code, Message: message}
}

// NewErrorWithDetails creates a new ErrorResponse with details.
func NewErrorWithDetails(code ErrorCode, message, details string) *ErrorResponse {
	return &ErrorResponse{Code: code, Message: message, Details: details}
}

// NewAuthenticationFailedError creates the generic authentication failure.
// The message is deliberately identical for unknown users and bad proofs.
func NewAuthenticationFailedError() *ErrorResponse {
	return NewError(ErrCodeAuthenticationFailed, "Authentication failed")
}

// NewUnknownHandshakeError creates an unknown-handshake error.
func NewUnknownHandshakeError() *ErrorResponse {
	return NewError(ErrCodeUnknownHandshake, "Handshake not found or expired")
}

// NewUnauthorizedError creates an unauthorized error.
func NewUnauthorizedError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeUnauthorized, "Authorization required", details)
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeInvalidRequest, "Invalid request", details)
}

// NewRateLimitError creates a rate limit error.
func NewRateLimitError() *ErrorResponse {
	return NewError(ErrCodeRateLimitExceeded, "Too many failed authentication attempts")
}

// NewSystemError creates an internal error. Details stay server-side.
func NewSystemError() *ErrorResponse {
	return NewError(ErrCodeSystemError, "Internal server error")
}
