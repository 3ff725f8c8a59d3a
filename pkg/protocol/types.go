// Package protocol defines the wire types and error codes of the srpgate
// authentication API. All SRP values travel base64-encoded; group elements
// are padded to the group's byte length before encoding.
package protocol

import "time"

// SRPInitRequest starts an authentication handshake.
type SRPInitRequest struct {
	Username string `json:"username"`
	A        string `json:"A"` // client ephemeral public value, base64
}

// SRPInitResponse carries the server's challenge.
type SRPInitResponse struct {
	HandshakeID string `json:"handshake_id"`
	Salt        string `json:"salt"` // base64
	B           string `json:"B"`    // server ephemeral public value, base64
}

// SRPVerifyRequest completes the handshake with the client's proof.
type SRPVerifyRequest struct {
	HandshakeID string `json:"handshake_id"`
	M1          string `json:"M1"` // client proof, base64
}

// SRPVerifyResponse returns the server's proof and the issued session.
type SRPVerifyResponse struct {
	M2        string    `json:"M2"` // server proof, base64
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutResponse acknowledges session termination.
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}
