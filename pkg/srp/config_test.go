package srp_test

import (
	"crypto"
	"crypto/sha256"
	"errors"
	"math/big"
	"testing"

	"github.com/srpgate/srpgate/pkg/srp"
)

func TestConfigDerivesK(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group2048, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}

	// k = H(pad(N) | pad(g)) with g padded to the byte length of N.
	nBytes := cfg.N().Bytes()
	gBytes := make([]byte, len(nBytes))
	copy(gBytes[len(gBytes)-1:], cfg.G().Bytes())

	h := sha256.New()
	h.Write(nBytes)
	h.Write(gBytes)
	want := new(big.Int).SetBytes(h.Sum(nil))

	if cfg.K().Cmp(want) != 0 {
		t.Errorf("k = %X, want %X", cfg.K(), want)
	}
}

func TestConfigPadSize(t *testing.T) {
	tests := []struct {
		bits int
		want int
	}{
		{srp.Group512, 64},
		{srp.Group1024, 128},
		{srp.Group2048, 256},
		{srp.Group8192, 1024},
	}
	for _, tt := range tests {
		cfg, err := srp.NewConfig(tt.bits, crypto.SHA256)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.PadSize() != tt.want {
			t.Errorf("group %d: pad size %d, want %d", tt.bits, cfg.PadSize(), tt.want)
		}
	}
}

func TestConfigCustomParameters(t *testing.T) {
	cfg, err := srp.NewCustomConfig(big.NewInt(37), big.NewInt(3), crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PadSize() != 1 {
		t.Errorf("pad size %d, want 1", cfg.PadSize())
	}
	if cfg.N().Int64() != 37 || cfg.G().Int64() != 3 {
		t.Error("custom parameters not retained")
	}
	if cfg.K().Sign() == 0 {
		t.Error("k not derived")
	}
}

func TestConfigRejectsBadParameters(t *testing.T) {
	if _, err := srp.NewConfig(999, crypto.SHA256); !errors.Is(err, srp.ErrUnsupportedGroup) {
		t.Errorf("got %v, want ErrUnsupportedGroup", err)
	}
	if _, err := srp.NewCustomConfig(nil, big.NewInt(2), crypto.SHA256); err == nil {
		t.Error("expected error for nil modulus")
	}
	if _, err := srp.NewCustomConfig(big.NewInt(37), big.NewInt(0), crypto.SHA256); err == nil {
		t.Error("expected error for zero generator")
	}
	if _, err := srp.NewCustomConfig(big.NewInt(37), big.NewInt(2), crypto.MD5SHA1); !errors.Is(err, srp.ErrUnsupportedHash) {
		t.Errorf("got %v, want ErrUnsupportedHash", err)
	}
}

func TestConfigHashBytes(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group1024, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	want := sha256.Sum256([]byte("hello world"))
	got := cfg.HashBytes([]byte("hello "), []byte("world"))
	if string(got) != string(want[:]) {
		t.Error("HashBytes does not concatenate before hashing")
	}
}
