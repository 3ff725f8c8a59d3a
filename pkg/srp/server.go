package srp

import (
	"math/big"
)

// Server implements the server side of the SRP-6a exchange. Like Client it
// is stateless; callers hold the per-session values.
type Server struct {
	cfg *Config
}

// NewServer returns a server bound to the given configuration.
func NewServer(cfg *Config) *Server {
	return &Server{cfg: cfg}
}

// Config returns the server's configuration.
func (s *Server) Config() *Config {
	return s.cfg
}

// GenerateKeys draws a fresh ephemeral key pair for a login against the
// given verifier: b random, B = (k*v + g^b) mod N. The draw is repeated
// until B mod N != 0.
func (s *Server) GenerateKeys(verifier *Key) (*KeyPair, error) {
	N := s.cfg.group.N
	v := verifier.Int()

	for {
		b, err := randomInt(ephemeralSize)
		if err != nil {
			return nil, err
		}

		kv := new(big.Int).Mul(s.cfg.k, v)
		kv.Mod(kv, N)

		B := new(big.Int).Exp(s.cfg.group.G, b, N)
		B.Add(B, kv)
		B.Mod(B, N)

		if B.Sign() == 0 {
			b.SetInt64(0)
			continue
		}

		return &KeyPair{Public: s.cfg.key(B), Private: s.cfg.key(b)}, nil
	}
}

// SharedSecret computes the server-side shared secret
// S = (A * v^u)^b mod N.
// It fails with ErrNullClientKey when A mod N == 0.
func (s *Server) SharedSecret(A *Key, keys *KeyPair, verifier *Key) (*Key, error) {
	N := s.cfg.group.N
	bigA := A.Int()

	if s.cfg.isZeroModN(bigA) {
		return nil, ErrNullClientKey
	}

	u := s.cfg.computeU(bigA, keys.Public.n)

	vu := new(big.Int).Exp(verifier.n, u, N)
	base := new(big.Int).Mul(bigA, vu)
	base.Mod(base, N)

	S := new(big.Int).Exp(base, keys.Private.n, N)

	base.SetInt64(0)

	return s.cfg.key(S), nil
}

// VerifyClientProof checks the client's proof M1 against the server's
// recomputation. On success it returns the server proof M2 to send back;
// on mismatch it returns ErrInvalidClientProof and no proof may be
// revealed to the client.
func (s *Server) VerifyClientProof(M1 []byte, username string, salt []byte, A, B, S *Key) ([]byte, error) {
	K := s.cfg.sessionKey(S)

	expected, err := s.cfg.clientProof(username, salt, A, B, K)
	if err != nil {
		return nil, err
	}

	if !constantTimeEqual(M1, expected) {
		return nil, ErrInvalidClientProof
	}

	return s.cfg.serverProof(A, expected, K), nil
}
