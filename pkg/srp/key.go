package srp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// SaltSize is the length in bytes of newly generated salts.
const SaltSize = 16

// ephemeralSize is the entropy in bytes drawn for the ephemeral private
// exponents a and b.
const ephemeralSize = 32

// Key wraps a non-negative integer used in the protocol, together with the
// pad width applied when the value appears in a hash input. Group elements
// carry the configuration's pad size; values that never enter a hash may
// carry zero, which means minimal big-endian encoding.
type Key struct {
	n   *big.Int
	pad int
}

// KeyFromBytes builds a Key from a big-endian byte string.
func KeyFromBytes(b []byte, padSize int) (*Key, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty byte string", ErrInvalidKey)
	}
	return &Key{n: new(big.Int).SetBytes(b), pad: padSize}, nil
}

// KeyFromHex builds a Key from a hex string.
func KeyFromHex(s string, padSize int) (*Key, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return KeyFromBytes(b, padSize)
}

// KeyFromInt builds a Key from a big integer. The integer is copied.
func KeyFromInt(n *big.Int, padSize int) *Key {
	return &Key{n: new(big.Int).Set(n), pad: padSize}
}

// Int returns a copy of the key's integer value.
func (k *Key) Int() *big.Int {
	return new(big.Int).Set(k.n)
}

// Bytes returns the minimal big-endian encoding of the key.
func (k *Key) Bytes() []byte {
	return k.n.Bytes()
}

// PaddedBytes returns the big-endian encoding left-padded with zero bytes to
// the key's pad width. If the encoding is already at least that long it is
// returned unchanged.
func (k *Key) PaddedBytes() []byte {
	return pad(k.n.Bytes(), k.pad)
}

// Hex returns the minimal hex encoding of the key.
func (k *Key) Hex() string {
	return hex.EncodeToString(k.n.Bytes())
}

// PadSize returns the pad width attached to the key.
func (k *Key) PadSize() int {
	return k.pad
}

// Equal reports whether both keys hold the same integer value.
func (k *Key) Equal(other *Key) bool {
	return other != nil && k.n.Cmp(other.n) == 0
}

// Zero overwrites the key's value. Call it when a secret-bearing key
// (private exponent, shared secret) is no longer needed.
func (k *Key) Zero() {
	if k.n != nil {
		k.n.SetInt64(0)
	}
}

// KeyPair holds an ephemeral public/private key pair. The private key is
// per-session material and must never be persisted.
type KeyPair struct {
	Public  *Key
	Private *Key
}

// Destroy zeroizes the private key. The pair must not be used afterwards.
func (kp *KeyPair) Destroy() {
	if kp.Private != nil {
		kp.Private.Zero()
		kp.Private = nil
	}
}

// GenerateSalt returns SaltSize bytes from the OS random source.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to draw salt: %w", err)
	}
	return salt, nil
}

// randomInt draws n bytes from the OS random source and interprets them as a
// big-endian integer. A failure to draw randomness is fatal for the session
// and surfaces as an error.
func randomInt(n int) (*big.Int, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to draw randomness: %w", err)
	}
	v := new(big.Int).SetBytes(buf)
	for i := range buf {
		buf[i] = 0
	}
	return v, nil
}
