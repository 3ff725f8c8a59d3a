package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/srpgate/srpgate/pkg/srp"
)

// handshakeIDBytes is the size of the random handshake ID (128 bits).
const handshakeIDBytes = 16

// Handshake holds the server-side state between the init and verify steps
// of an SRP exchange. It contains the server's ephemeral key pair, so it
// must never be persisted or logged.
type Handshake struct {
	Username string
	Config   *srp.Config
	Salt     []byte
	ClientA  *srp.Key
	Keys     *srp.KeyPair
	Verifier *srp.Key
	Started  time.Time
}

// Destroy zeroizes the secret ephemeral material.
func (h *Handshake) Destroy() {
	if h.Keys != nil {
		h.Keys.Destroy()
	}
}

// HandshakeStore keeps pending handshakes with a TTL. Entries are one-time:
// Take removes the handshake so a captured handshake ID cannot be replayed.
type HandshakeStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewHandshakeStore creates a store whose entries expire after ttl.
func NewHandshakeStore(ttl time.Duration) *HandshakeStore {
	return &HandshakeStore{
		cache: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// Put stores a pending handshake and returns its opaque ID.
func (s *HandshakeStore) Put(hs *Handshake) (string, error) {
	idBytes := make([]byte, handshakeIDBytes)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("failed to generate handshake ID: %w", err)
	}
	id := base64.URLEncoding.EncodeToString(idBytes)

	hs.Started = time.Now()
	s.cache.Set(id, hs, cache.DefaultExpiration)
	return id, nil
}

// Take retrieves and removes a pending handshake. Returns false if the ID
// is unknown, expired, or already consumed.
func (s *HandshakeStore) Take(id string) (*Handshake, bool) {
	value, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	s.cache.Delete(id)

	hs, ok := value.(*Handshake)
	if !ok {
		return nil, false
	}
	return hs, true
}

// Count returns the number of pending handshakes.
func (s *HandshakeStore) Count() int {
	return s.cache.ItemCount()
}

// Flush discards all pending handshakes.
func (s *HandshakeStore) Flush() {
	s.cache.Flush()
}
