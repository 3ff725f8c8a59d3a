package srp_test

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/srpgate/srpgate/pkg/srp"
)

func TestKeyEncodingRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		pad  int
	}{
		{"small value wide pad", "0A0B0C", 16},
		{"value fills pad", "FFEEDDCCBBAA99887766554433221100", 16},
		{"single byte", "07", 4},
		{"leading zero byte", "00FF", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := srp.KeyFromHex(tt.hex, tt.pad)
			if err != nil {
				t.Fatal(err)
			}

			padded := k.PaddedBytes()
			if len(padded) != tt.pad {
				t.Fatalf("padded length %d, want %d", len(padded), tt.pad)
			}

			// bytes -> key -> bytes is stable.
			k2, err := srp.KeyFromBytes(padded, tt.pad)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(k2.PaddedBytes(), padded) {
				t.Error("padded byte round trip changed the encoding")
			}
			if !k.Equal(k2) {
				t.Error("byte round trip changed the value")
			}

			// hex -> key -> hex -> key is stable.
			k3, err := srp.KeyFromHex(k.Hex(), tt.pad)
			if err != nil {
				t.Fatal(err)
			}
			if !k.Equal(k3) {
				t.Error("hex round trip changed the value")
			}
		})
	}
}

func TestPaddingIsIdempotent(t *testing.T) {
	k, err := srp.KeyFromHex("ABCD", 8)
	if err != nil {
		t.Fatal(err)
	}

	once := k.PaddedBytes()
	again, err := srp.KeyFromBytes(once, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again.PaddedBytes(), once) {
		t.Errorf("pad(pad(x)) = %X, want %X", again.PaddedBytes(), once)
	}
}

func TestKeyOversizedValueNotTruncated(t *testing.T) {
	k, err := srp.KeyFromHex("0102030405", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(k.PaddedBytes()) != 5 {
		t.Errorf("value longer than pad width must be returned unchanged, got %X", k.PaddedBytes())
	}
}

func TestKeyFromBytesRejectsEmpty(t *testing.T) {
	if _, err := srp.KeyFromBytes(nil, 8); !errors.Is(err, srp.ErrInvalidKey) {
		t.Errorf("got %v, want ErrInvalidKey", err)
	}
}

func TestKeyFromHexRejectsGarbage(t *testing.T) {
	for _, s := range []string{"zz", "0x10", "1 2", "ABC"} {
		if _, err := srp.KeyFromHex(s, 8); !errors.Is(err, srp.ErrInvalidKey) {
			t.Errorf("%q: got %v, want ErrInvalidKey", s, err)
		}
	}
}

func TestKeyZero(t *testing.T) {
	k := srp.KeyFromInt(big.NewInt(123456789), 8)
	k.Zero()
	if k.Int().Sign() != 0 {
		t.Error("Zero did not clear the key value")
	}
}

func TestKeyPairDestroy(t *testing.T) {
	kp := &srp.KeyPair{
		Public:  srp.KeyFromInt(big.NewInt(42), 8),
		Private: srp.KeyFromInt(big.NewInt(1337), 8),
	}
	kp.Destroy()
	if kp.Private != nil {
		t.Error("Destroy left the private key in place")
	}
	if kp.Public == nil || kp.Public.Int().Int64() != 42 {
		t.Error("Destroy must not touch the public key")
	}
}

func TestGenerateSalt(t *testing.T) {
	s1, err := srp.GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	if len(s1) != srp.SaltSize {
		t.Fatalf("salt length %d, want %d", len(s1), srp.SaltSize)
	}
	s2, err := srp.GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(s1, s2) {
		t.Fatal("two salts were identical")
	}
}
