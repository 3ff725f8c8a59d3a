// Package handlers provides the HTTP request handlers for the srpgate API.
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/srpgate/srpgate/internal/api/middleware"
	"github.com/srpgate/srpgate/internal/auth"
	"github.com/srpgate/srpgate/internal/logging"
	"github.com/srpgate/srpgate/pkg/protocol"
	"github.com/srpgate/srpgate/pkg/srp"
)

// maxRequestBody bounds request bodies; even 8192-bit group elements fit
// comfortably within 64 KiB of base64.
const maxRequestBody = 64 << 10

// AuthHandler serves the SRP authentication endpoints.
type AuthHandler struct {
	registry   auth.Registry
	handshakes *auth.HandshakeStore
	sessions   *auth.SessionManager
	limiter    *auth.RateLimiter
	logger     *logging.Logger
}

// NewAuthHandler creates an authentication handler.
func NewAuthHandler(
	registry auth.Registry,
	handshakes *auth.HandshakeStore,
	sessions *auth.SessionManager,
	limiter *auth.RateLimiter,
	logger *logging.Logger,
) *AuthHandler {
	return &AuthHandler{
		registry:   registry,
		handshakes: handshakes,
		sessions:   sessions,
		limiter:    limiter,
		logger:     logger,
	}
}

// HandleSRPInit handles POST /auth/srp/init. It looks up the user's
// verifier record, draws a server ephemeral key pair, parks the handshake
// state, and returns the salt and challenge B.
func (ah *AuthHandler) HandleSRPInit(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if retryAfter, err := ah.limiter.CheckLimit(clientIP); err != nil {
		ah.logger.Warn("init rejected, client locked out", map[string]any{"client_ip": clientIP})
		setRetryAfter(w, retryAfter)
		middleware.WriteJSONError(w, protocol.NewRateLimitError())
		return
	}

	var req protocol.SRPInitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Username == "" {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("missing required field: username"))
		return
	}
	if req.A == "" {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("missing required field: A"))
		return
	}

	aBytes, err := base64.StdEncoding.DecodeString(req.A)
	if err != nil {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("field A is not valid base64"))
		return
	}

	record, err := ah.registry.Lookup(req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidUsername) {
			// Same response as a bad proof so usernames cannot be probed.
			ah.logger.Info("init for unknown user", map[string]any{"client_ip": clientIP, "username": req.Username})
			delay := ah.limiter.RecordFailure(clientIP)
			setRetryAfter(w, delay)
			middleware.WriteJSONError(w, protocol.NewAuthenticationFailedError())
			return
		}
		ah.logger.Error("registry lookup failed", map[string]any{"error": err.Error()})
		middleware.WriteJSONError(w, protocol.NewSystemError())
		return
	}

	cfg, err := record.Config()
	if err != nil {
		ah.logger.Error("verifier record has unusable parameters", map[string]any{
			"username": record.Username,
			"error":    err.Error(),
		})
		middleware.WriteJSONError(w, protocol.NewSystemError())
		return
	}

	salt, err := record.SaltBytes()
	if err != nil {
		ah.logger.Error("verifier record has undecodable salt", map[string]any{"username": record.Username})
		middleware.WriteJSONError(w, protocol.NewSystemError())
		return
	}
	verifier, err := record.VerifierKey(cfg.PadSize())
	if err != nil {
		ah.logger.Error("verifier record has undecodable verifier", map[string]any{"username": record.Username})
		middleware.WriteJSONError(w, protocol.NewSystemError())
		return
	}

	A, err := srp.KeyFromBytes(aBytes, cfg.PadSize())
	if err != nil {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("field A is not a valid group element"))
		return
	}

	server := srp.NewServer(cfg)
	keys, err := server.GenerateKeys(verifier)
	if err != nil {
		ah.logger.Error("failed to generate server ephemeral keys", map[string]any{"error": err.Error()})
		middleware.WriteJSONError(w, protocol.NewSystemError())
		return
	}

	handshakeID, err := ah.handshakes.Put(&auth.Handshake{
		Username: record.Username,
		Config:   cfg,
		Salt:     salt,
		ClientA:  A,
		Keys:     keys,
		Verifier: verifier,
	})
	if err != nil {
		ah.logger.Error("failed to store handshake", map[string]any{"error": err.Error()})
		middleware.WriteJSONError(w, protocol.NewSystemError())
		return
	}

	ah.logger.Info("handshake initialized", map[string]any{
		"client_ip": clientIP,
		"username":  record.Username,
		"group":     record.Group,
		"hash":      record.Hash,
	})

	middleware.WriteJSON(w, protocol.SRPInitResponse{
		HandshakeID: handshakeID,
		Salt:        base64.StdEncoding.EncodeToString(salt),
		B:           base64.StdEncoding.EncodeToString(keys.Public.PaddedBytes()),
	}, http.StatusOK)
}

// HandleSRPVerify handles POST /auth/srp/verify. It consumes the parked
// handshake, checks the client proof M1 in constant time, and on success
// returns the server proof M2 with a session token.
func (ah *AuthHandler) HandleSRPVerify(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if retryAfter, err := ah.limiter.CheckLimit(clientIP); err != nil {
		ah.logger.Warn("verify rejected, client locked out", map[string]any{"client_ip": clientIP})
		setRetryAfter(w, retryAfter)
		middleware.WriteJSONError(w, protocol.NewRateLimitError())
		return
	}

	var req protocol.SRPVerifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.HandshakeID == "" {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("missing required field: handshake_id"))
		return
	}
	if req.M1 == "" {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("missing required field: M1"))
		return
	}

	m1, err := base64.StdEncoding.DecodeString(req.M1)
	if err != nil {
		middleware.WriteJSONError(w, protocol.NewInvalidRequestError("field M1 is not valid base64"))
		return
	}

	hs, ok := ah.handshakes.Take(req.HandshakeID)
	if !ok {
		ah.logger.Info("verify with unknown handshake", map[string]any{"client_ip": clientIP})
		middleware.WriteJSONError(w, protocol.NewUnknownHandshakeError())
		return
	}
	defer hs.Destroy()

	server := srp.NewServer(hs.Config)

	S, err := server.SharedSecret(hs.ClientA, hs.Keys, hs.Verifier)
	if err != nil {
		// A degenerate A slipped through init; treat as a failed proof.
		ah.failAuthentication(w, clientIP, hs.Username, err)
		return
	}
	defer S.Zero()

	m2, err := server.VerifyClientProof(m1, hs.Username, hs.Salt, hs.ClientA, hs.Keys.Public, S)
	if err != nil {
		ah.failAuthentication(w, clientIP, hs.Username, err)
		return
	}

	ah.limiter.RecordSuccess(clientIP)

	session, err := ah.sessions.CreateSession(hs.Username)
	if err != nil {
		ah.logger.Error("failed to create session", map[string]any{
			"username": hs.Username,
			"error":    err.Error(),
		})
		middleware.WriteJSONError(w, protocol.NewSystemError())
		return
	}

	ah.logger.Info("authentication succeeded", map[string]any{
		"client_ip": clientIP,
		"username":  hs.Username,
	})

	middleware.WriteJSON(w, protocol.SRPVerifyResponse{
		M2:        base64.StdEncoding.EncodeToString(m2),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, http.StatusOK)
}

// HandleLogout handles POST /auth/logout. The route is wrapped by the auth
// middleware, so a validated session is present in the context.
func (ah *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		middleware.WriteJSONError(w, protocol.NewUnauthorizedError("no session"))
		return
	}

	if err := ah.sessions.InvalidateSession(session.Token); err != nil {
		middleware.WriteJSONError(w, protocol.NewError(protocol.ErrCodeSessionInvalid, "Invalid session token"))
		return
	}

	ah.logger.Info("session terminated", map[string]any{"username": session.Username})
	middleware.WriteJSON(w, protocol.LogoutResponse{LoggedOut: true}, http.StatusOK)
}

// failAuthentication records a failed attempt and writes the generic
// authentication failure. The cause is logged but never sent to the client.
func (ah *AuthHandler) failAuthentication(w http.ResponseWriter, clientIP, username string, cause error) {
	ah.logger.Info("authentication failed", map[string]any{
		"client_ip": clientIP,
		"username":  username,
		"cause":     fmt.Sprintf("%v", cause),
	})
	delay := ah.limiter.RecordFailure(clientIP)
	setRetryAfter(w, delay)
	middleware.WriteJSONError(w, protocol.NewAuthenticationFailedError())
}

func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(auth.RetryAfterSeconds(d)))
}

// getClientIP extracts the client address from X-Forwarded-For or RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
