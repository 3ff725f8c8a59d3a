package srp

import (
	"crypto"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ExportKey derives application key material of the requested length from a
// shared secret using HKDF (RFC 5869) over the configured digest. The info
// string domain-separates independent keys drawn from the same session.
//
// This is a convenience on top of the protocol, not part of it: the proof
// transcript only ever sees K = H(pad(S)).
func (c *Config) ExportKey(S *Key, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("export length must be positive, got %d", length)
	}

	out := make([]byte, length)
	r := hkdf.New(c.hash.New, pad(S.Bytes(), c.padSize), salt, info)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("hkdf expand failed: %w", err)
	}
	return out, nil
}

// ExportKeyHash is ExportKey with an explicit digest, for callers deriving
// keys under a different hash than the protocol's.
func ExportKeyHash(h crypto.Hash, S *Key, salt, info []byte, length int) ([]byte, error) {
	if !h.Available() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedHash, h)
	}
	if length <= 0 {
		return nil, fmt.Errorf("export length must be positive, got %d", length)
	}

	out := make([]byte, length)
	r := hkdf.New(h.New, S.PaddedBytes(), salt, info)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("hkdf expand failed: %w", err)
	}
	return out, nil
}
