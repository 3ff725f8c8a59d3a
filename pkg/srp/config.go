package srp

import (
	"crypto"
	"fmt"
	"math/big"

	// Digests selectable via crypto.Hash must be linked in.
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// Config binds a group to a digest and carries the derived parameters used
// by both roles: the multiplier k = H(pad(N) | pad(g)) and the pad size
// (the byte length of N). A Config is immutable after construction and safe
// to share between concurrent sessions; client and server must be built
// from equal configurations.
//
// Modular exponentiation uses math/big, which is not constant-time. The
// exponents involved are either public or blinded by fresh per-session
// randomness, but deployments with strict side-channel requirements should
// be aware of the limitation.
type Config struct {
	group   *Group
	hash    crypto.Hash
	k       *big.Int
	padSize int
}

// NewConfig returns a configuration for a predefined group size.
func NewConfig(bits int, h crypto.Hash) (*Config, error) {
	group, err := GetGroup(bits)
	if err != nil {
		return nil, err
	}
	return NewCustomConfig(group.N, group.G, h)
}

// NewCustomConfig returns a configuration for arbitrary group parameters.
// No primality check is performed; the caller is responsible for supplying
// a safe prime N and a generator g.
func NewCustomConfig(n, g *big.Int, h crypto.Hash) (*Config, error) {
	if !h.Available() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedHash, h)
	}
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: modulus must be a positive integer", ErrInvalidKey)
	}
	if g == nil || g.Sign() <= 0 {
		return nil, fmt.Errorf("%w: generator must be a positive integer", ErrInvalidKey)
	}

	cfg := &Config{
		group:   &Group{Bits: n.BitLen(), N: new(big.Int).Set(n), G: new(big.Int).Set(g)},
		hash:    h,
		padSize: len(n.Bytes()),
	}

	// k = H(pad(N) | pad(g)), with g padded to the byte length of N per
	// RFC 5054. Derived eagerly so sessions never race on it.
	cfg.k = new(big.Int).SetBytes(cfg.hashBytes(
		cfg.padBytes(cfg.group.N.Bytes()),
		cfg.padBytes(cfg.group.G.Bytes()),
	))

	return cfg, nil
}

// N returns the group modulus.
func (c *Config) N() *big.Int {
	return new(big.Int).Set(c.group.N)
}

// G returns the group generator.
func (c *Config) G() *big.Int {
	return new(big.Int).Set(c.group.G)
}

// K returns the multiplier parameter k = H(pad(N) | pad(g)).
func (c *Config) K() *big.Int {
	return new(big.Int).Set(c.k)
}

// PadSize returns the byte length of N, the width every group element is
// padded to inside hash inputs.
func (c *Config) PadSize() int {
	return c.padSize
}

// Hash returns the configured digest.
func (c *Config) Hash() crypto.Hash {
	return c.hash
}

// GroupBits returns the bit length of the group modulus.
func (c *Config) GroupBits() int {
	return c.group.Bits
}

// HashBytes applies the configured digest to the concatenation of the
// given byte strings.
func (c *Config) HashBytes(parts ...[]byte) []byte {
	return c.hashBytes(parts...)
}

func (c *Config) hashBytes(parts ...[]byte) []byte {
	h := c.hash.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// padBytes left-pads b to the configuration's pad size.
func (c *Config) padBytes(b []byte) []byte {
	return pad(b, c.padSize)
}

// key wraps a group element with the configuration's pad size attached, so
// its padded view is always hash-ready.
func (c *Config) key(n *big.Int) *Key {
	return &Key{n: n, pad: c.padSize}
}

// isZeroModN reports whether x mod N == 0.
func (c *Config) isZeroModN(x *big.Int) bool {
	return new(big.Int).Mod(x, c.group.N).Sign() == 0
}
