package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session token is unknown.
	ErrSessionNotFound = errors.New("session token not found")

	// ErrSessionExpired is returned when a session token has expired.
	ErrSessionExpired = errors.New("session token expired")

	// ErrSessionLimitExceeded is returned when the concurrent session cap is hit.
	ErrSessionLimitExceeded = errors.New("session limit exceeded")
)

const (
	// MaxConcurrentSessions caps live sessions to bound memory under abuse.
	MaxConcurrentSessions = 128

	// tokenIDBytes is the entropy of the token ID (256 bits).
	tokenIDBytes = 32

	// sessionCleanupInterval is how often expired sessions are swept.
	sessionCleanupInterval = time.Minute
)

// Session is an authenticated session issued after a successful SRP exchange.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionManager issues and validates HMAC-signed bearer tokens backed by
// in-memory storage. Token format: base64url(id).base64url(HMAC(id|username)).
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	secret   []byte
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates a session manager with the given HMAC secret
// and TTL. The secret must be cryptographically random, 32 bytes recommended.
func NewSessionManager(secret []byte, ttl time.Duration) *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		secret:   secret,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go sm.cleanupLoop()
	return sm
}

// CreateSession issues a token for username. The returned session includes
// the expiry timestamp so callers can relay it to the client.
func (sm *SessionManager) CreateSession(username string) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= MaxConcurrentSessions {
		return nil, ErrSessionLimitExceeded
	}

	idBytes := make([]byte, tokenIDBytes)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, fmt.Errorf("failed to generate token ID: %w", err)
	}
	tokenID := base64.URLEncoding.EncodeToString(idBytes)
	token := tokenID + "." + sm.sign(tokenID, username)

	now := time.Now()
	session := &Session{
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.ttl),
	}
	sm.sessions[token] = session
	return session, nil
}

// ValidateSession checks a token and returns its session.
func (sm *SessionManager) ValidateSession(token string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[token]
	if !exists {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	if !sm.verify(token, session.Username) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// InvalidateSession removes a session (logout).
func (sm *SessionManager) InvalidateSession(token string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[token]; !exists {
		return ErrSessionNotFound
	}
	delete(sm.sessions, token)
	return nil
}

// SessionCount returns the number of live sessions.
func (sm *SessionManager) SessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Stop terminates the background cleanup goroutine.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stopCh) })
}

func (sm *SessionManager) sign(tokenID, username string) string {
	mac := hmac.New(sha256.New, sm.secret)
	mac.Write([]byte(tokenID))
	mac.Write([]byte(username))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

func (sm *SessionManager) verify(token, username string) bool {
	tokenID, signature, found := strings.Cut(token, ".")
	if !found || tokenID == "" || signature == "" {
		return false
	}
	expected := sm.sign(tokenID, username)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.sweepExpired()
		case <-sm.stopCh:
			return
		}
	}
}

func (sm *SessionManager) sweepExpired() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for token, session := range sm.sessions {
		if now.After(session.ExpiresAt) {
			delete(sm.sessions, token)
		}
	}
}

// GenerateSessionSecret returns 32 bytes of random key material for HMAC
// signing. Called once at service startup; tokens do not survive restarts.
func GenerateSessionSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}
