package srp

import (
	"crypto/subtle"
	"fmt"
	"math/big"
)

// pad left-extends b with zero bytes to the given size. If b is already at
// least size bytes long it is returned unchanged, which makes padding
// idempotent.
func pad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	padded := make([]byte, size)
	copy(padded[size-len(b):], b)
	return padded
}

// xorBytes XORs two equal-length byte strings. Unequal lengths indicate a
// programming error (the operands are always digests of the configured
// hash) and are reported rather than silently truncated.
func xorBytes(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("xor operands differ in length: %d vs %d", len(a), len(b))
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// computeU derives the scrambling parameter u = H(pad(A) | pad(B)).
func (c *Config) computeU(A, B *big.Int) *big.Int {
	digest := c.hashBytes(
		c.padBytes(A.Bytes()),
		c.padBytes(B.Bytes()),
	)
	return new(big.Int).SetBytes(digest)
}

// sessionKey derives K = H(pad(S)) from the shared secret.
func (c *Config) sessionKey(S *Key) []byte {
	return c.hashBytes(pad(S.Bytes(), c.padSize))
}

// clientProof computes M1 = H(H(pad(N)) xor H(pad(g)) | H(I) | s | pad(A) | pad(B) | K).
//
// Hashing the username into the proof keeps a malicious server from telling
// whether two of its users share a password (SRP-6a).
func (c *Config) clientProof(username string, salt []byte, A, B *Key, K []byte) ([]byte, error) {
	hN := c.hashBytes(c.padBytes(c.group.N.Bytes()))
	hG := c.hashBytes(c.padBytes(c.group.G.Bytes()))

	groupXOR, err := xorBytes(hN, hG)
	if err != nil {
		return nil, err
	}

	return c.hashBytes(
		groupXOR,
		c.hashBytes([]byte(username)),
		salt,
		A.PaddedBytes(),
		B.PaddedBytes(),
		K,
	), nil
}

// serverProof computes M2 = H(pad(A) | M1 | K).
func (c *Config) serverProof(A *Key, M1, K []byte) []byte {
	return c.hashBytes(A.PaddedBytes(), M1, K)
}

// constantTimeEqual compares two proofs without short-circuiting. Both the
// length check and the byte comparison are branch-free over the content.
func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
