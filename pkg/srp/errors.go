package srp

import "errors"

// Protocol errors. All of them are terminal: a session that produced one
// must be discarded, the caller may retry only with a fresh session.
var (
	// ErrNullClientKey is returned by the server when A mod N == 0.
	ErrNullClientKey = errors.New("srp: client public key is zero modulo N")

	// ErrNullServerKey is returned by the client when B mod N == 0 or the
	// scrambling parameter u is zero.
	ErrNullServerKey = errors.New("srp: server public key is zero modulo N")

	// ErrInvalidClientProof is returned when the client's proof M1 does not
	// match the server's recomputation. Authentication has failed.
	ErrInvalidClientProof = errors.New("srp: invalid client proof")

	// ErrInvalidServerProof is returned when the server's proof M2 does not
	// match the client's recomputation. The server is not authenticated.
	ErrInvalidServerProof = errors.New("srp: invalid server proof")

	// ErrInvalidKey is returned when supplied key material cannot be parsed.
	ErrInvalidKey = errors.New("srp: invalid key material")

	// ErrUnsupportedGroup is returned for group sizes without a predefined prime.
	ErrUnsupportedGroup = errors.New("srp: unsupported group size")

	// ErrUnsupportedHash is returned when the configured digest is not linked
	// into the binary.
	ErrUnsupportedHash = errors.New("srp: unsupported hash")
)
