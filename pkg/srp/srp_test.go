package srp_test

import (
	"crypto"
	"errors"
	"math/big"
	"testing"

	"github.com/srpgate/srpgate/pkg/srp"
)

// roundTrip runs a complete registration + login and returns the error, if
// any, from the first failing step.
func roundTrip(t *testing.T, cfg *srp.Config, username, password string) {
	t.Helper()

	client := srp.NewClient(cfg)
	server := srp.NewServer(cfg)

	salt, verifier, err := client.GenerateSaltAndVerifier(username, password)
	if err != nil {
		t.Fatalf("registration: %v", err)
	}

	clientKeys, err := client.GenerateKeys()
	if err != nil {
		t.Fatalf("client keys: %v", err)
	}
	serverKeys, err := server.GenerateKeys(verifier)
	if err != nil {
		t.Fatalf("server keys: %v", err)
	}

	Sc, err := client.SharedSecret(username, password, salt, clientKeys, serverKeys.Public)
	if err != nil {
		t.Fatalf("client shared secret: %v", err)
	}
	Ss, err := server.SharedSecret(clientKeys.Public, serverKeys, verifier)
	if err != nil {
		t.Fatalf("server shared secret: %v", err)
	}
	if !Sc.Equal(Ss) {
		t.Fatal("shared secrets differ")
	}

	M1, err := client.ClientProof(username, salt, clientKeys.Public, serverKeys.Public, Sc)
	if err != nil {
		t.Fatalf("client proof: %v", err)
	}
	M2, err := server.VerifyClientProof(M1, username, salt, clientKeys.Public, serverKeys.Public, Ss)
	if err != nil {
		t.Fatalf("server rejected client proof: %v", err)
	}
	if err := client.VerifyServerProof(M2, M1, clientKeys.Public, Sc); err != nil {
		t.Fatalf("client rejected server proof: %v", err)
	}
}

func TestFullExchange(t *testing.T) {
	tests := []struct {
		name     string
		bits     int
		hash     crypto.Hash
		username string
		password string
	}{
		{"sha256/2048", srp.Group2048, crypto.SHA256, "adamfowler", "testpassword"},
		{"sha1/4096", srp.Group4096, crypto.SHA1, "adamfowler", "testpassword"},
		{"sha512/1024", srp.Group1024, crypto.SHA512, "alice", "password123"},
		{"sha384/3072", srp.Group3072, crypto.SHA384, "bob", "hunter2hunter2"},
		{"sha256/512-legacy", srp.Group512, crypto.SHA256, "carol", "pw"},
		{"sha256/8192", srp.Group8192, crypto.SHA256, "dave", "correct horse battery staple"},
		{"empty-password", srp.Group1024, crypto.SHA256, "eve", ""},
		{"utf8-credentials", srp.Group1024, crypto.SHA256, "ユーザー", "пароль✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := srp.NewConfig(tt.bits, tt.hash)
			if err != nil {
				t.Fatal(err)
			}
			roundTrip(t, cfg, tt.username, tt.password)
		})
	}
}

// Tiny custom parameters are legal for sanity testing even though they
// offer no security.
func TestFullExchangeTinyCustomGroup(t *testing.T) {
	cfg, err := srp.NewCustomConfig(big.NewInt(37), big.NewInt(3), crypto.SHA384)
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, cfg, "alice", "password123")
}

func TestRawPasswordVariant(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group2048, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)
	server := srp.NewServer(cfg)

	// Enroll with an empty username so the inner hash is H(":" | password),
	// matching the raw byte-string derivation.
	password := "testpassword"
	salt, verifier, err := client.GenerateSaltAndVerifier("", password)
	if err != nil {
		t.Fatal(err)
	}

	clientKeys, err := client.GenerateKeys()
	if err != nil {
		t.Fatal(err)
	}
	serverKeys, err := server.GenerateKeys(verifier)
	if err != nil {
		t.Fatal(err)
	}

	Sc, err := client.SharedSecretBytes([]byte(password), salt, clientKeys, serverKeys.Public)
	if err != nil {
		t.Fatal(err)
	}
	Ss, err := server.SharedSecret(clientKeys.Public, serverKeys, verifier)
	if err != nil {
		t.Fatal(err)
	}
	if !Sc.Equal(Ss) {
		t.Fatal("raw-password variant produced a different shared secret")
	}
}

func TestClientRejectsNullServerKey(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group1024, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)

	salt, _, err := client.GenerateSaltAndVerifier("alice", "password123")
	if err != nil {
		t.Fatal(err)
	}
	keys, err := client.GenerateKeys()
	if err != nil {
		t.Fatal(err)
	}

	for _, B := range []*big.Int{
		big.NewInt(0),
		cfg.N(),
		new(big.Int).Lsh(cfg.N(), 1), // 2N
	} {
		_, err := client.SharedSecret("alice", "password123", salt, keys, srp.KeyFromInt(B, cfg.PadSize()))
		if !errors.Is(err, srp.ErrNullServerKey) {
			t.Errorf("B=%v: got %v, want ErrNullServerKey", B, err)
		}
	}
}

func TestServerRejectsNullClientKey(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group1024, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)
	server := srp.NewServer(cfg)

	_, verifier, err := client.GenerateSaltAndVerifier("alice", "password123")
	if err != nil {
		t.Fatal(err)
	}
	serverKeys, err := server.GenerateKeys(verifier)
	if err != nil {
		t.Fatal(err)
	}

	for _, A := range []*big.Int{
		big.NewInt(0),
		cfg.N(),
		new(big.Int).Mul(cfg.N(), big.NewInt(3)),
	} {
		_, err := server.SharedSecret(srp.KeyFromInt(A, cfg.PadSize()), serverKeys, verifier)
		if !errors.Is(err, srp.ErrNullClientKey) {
			t.Errorf("A=%v: got %v, want ErrNullClientKey", A, err)
		}
	}
}

func TestTamperedProofsRejected(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group2048, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)
	server := srp.NewServer(cfg)

	username, password := "alice", "password123"
	salt, verifier, err := client.GenerateSaltAndVerifier(username, password)
	if err != nil {
		t.Fatal(err)
	}
	clientKeys, _ := client.GenerateKeys()
	serverKeys, _ := server.GenerateKeys(verifier)

	Sc, err := client.SharedSecret(username, password, salt, clientKeys, serverKeys.Public)
	if err != nil {
		t.Fatal(err)
	}
	Ss, err := server.SharedSecret(clientKeys.Public, serverKeys, verifier)
	if err != nil {
		t.Fatal(err)
	}

	M1, err := client.ClientProof(username, salt, clientKeys.Public, serverKeys.Public, Sc)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("bit flip in M1", func(t *testing.T) {
		bad := append([]byte(nil), M1...)
		bad[0] ^= 0x01
		_, err := server.VerifyClientProof(bad, username, salt, clientKeys.Public, serverKeys.Public, Ss)
		if !errors.Is(err, srp.ErrInvalidClientProof) {
			t.Errorf("got %v, want ErrInvalidClientProof", err)
		}
	})

	t.Run("bit flip in M2", func(t *testing.T) {
		M2, err := server.VerifyClientProof(M1, username, salt, clientKeys.Public, serverKeys.Public, Ss)
		if err != nil {
			t.Fatal(err)
		}
		bad := append([]byte(nil), M2...)
		bad[len(bad)-1] ^= 0x80
		if err := client.VerifyServerProof(bad, M1, clientKeys.Public, Sc); !errors.Is(err, srp.ErrInvalidServerProof) {
			t.Errorf("got %v, want ErrInvalidServerProof", err)
		}
	})

	t.Run("truncated M1", func(t *testing.T) {
		_, err := server.VerifyClientProof(M1[:len(M1)-1], username, salt, clientKeys.Public, serverKeys.Public, Ss)
		if !errors.Is(err, srp.ErrInvalidClientProof) {
			t.Errorf("got %v, want ErrInvalidClientProof", err)
		}
	})
}

func TestWrongPasswordRejected(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group2048, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)
	server := srp.NewServer(cfg)

	username := "alice"
	salt, verifier, err := client.GenerateSaltAndVerifier(username, "password123")
	if err != nil {
		t.Fatal(err)
	}
	clientKeys, _ := client.GenerateKeys()
	serverKeys, _ := server.GenerateKeys(verifier)

	Sc, err := client.SharedSecret(username, "password124", salt, clientKeys, serverKeys.Public)
	if err != nil {
		t.Fatal(err)
	}
	Ss, err := server.SharedSecret(clientKeys.Public, serverKeys, verifier)
	if err != nil {
		t.Fatal(err)
	}
	if Sc.Equal(Ss) {
		t.Fatal("wrong password produced the same shared secret")
	}

	M1, err := client.ClientProof(username, salt, clientKeys.Public, serverKeys.Public, Sc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := server.VerifyClientProof(M1, username, salt, clientKeys.Public, serverKeys.Public, Ss); !errors.Is(err, srp.ErrInvalidClientProof) {
		t.Errorf("got %v, want ErrInvalidClientProof", err)
	}
}

// A tampered B yields a client secret the server cannot reproduce.
func TestTamperedServerKeyRejected(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group2048, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)
	server := srp.NewServer(cfg)

	username, password := "alice", "password123"
	salt, verifier, err := client.GenerateSaltAndVerifier(username, password)
	if err != nil {
		t.Fatal(err)
	}
	clientKeys, _ := client.GenerateKeys()
	serverKeys, _ := server.GenerateKeys(verifier)

	// Flip one bit of B in transit.
	tampered := new(big.Int).Xor(serverKeys.Public.Int(), big.NewInt(1))
	badB := srp.KeyFromInt(tampered, cfg.PadSize())

	Sc, err := client.SharedSecret(username, password, salt, clientKeys, badB)
	if err != nil {
		t.Fatal(err)
	}
	Ss, err := server.SharedSecret(clientKeys.Public, serverKeys, verifier)
	if err != nil {
		t.Fatal(err)
	}

	M1, err := client.ClientProof(username, salt, clientKeys.Public, badB, Sc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := server.VerifyClientProof(M1, username, salt, clientKeys.Public, serverKeys.Public, Ss); !errors.Is(err, srp.ErrInvalidClientProof) {
		t.Errorf("got %v, want ErrInvalidClientProof", err)
	}
}

// Replaying a captured (A, M1) against a fresh server session fails because
// the fresh B changes u and hence S.
func TestReplayRejected(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group2048, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)
	server := srp.NewServer(cfg)

	username, password := "alice", "password123"
	salt, verifier, err := client.GenerateSaltAndVerifier(username, password)
	if err != nil {
		t.Fatal(err)
	}
	clientKeys, _ := client.GenerateKeys()

	// First, legitimate session.
	serverKeys1, _ := server.GenerateKeys(verifier)
	Sc, err := client.SharedSecret(username, password, salt, clientKeys, serverKeys1.Public)
	if err != nil {
		t.Fatal(err)
	}
	M1, err := client.ClientProof(username, salt, clientKeys.Public, serverKeys1.Public, Sc)
	if err != nil {
		t.Fatal(err)
	}

	// Replay (A, M1) against a fresh server ephemeral.
	serverKeys2, _ := server.GenerateKeys(verifier)
	Ss, err := server.SharedSecret(clientKeys.Public, serverKeys2, verifier)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := server.VerifyClientProof(M1, username, salt, clientKeys.Public, serverKeys2.Public, Ss); !errors.Is(err, srp.ErrInvalidClientProof) {
		t.Errorf("got %v, want ErrInvalidClientProof", err)
	}
}

func TestGeneratedKeysAreFresh(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group1024, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}
	client := srp.NewClient(cfg)

	k1, err := client.GenerateKeys()
	if err != nil {
		t.Fatal(err)
	}
	k2, err := client.GenerateKeys()
	if err != nil {
		t.Fatal(err)
	}
	if k1.Public.Equal(k2.Public) {
		t.Fatal("two key generations returned the same public key")
	}
	if k1.Public.Int().Sign() == 0 || k2.Public.Int().Sign() == 0 {
		t.Fatal("generated a zero public key")
	}
}

func TestExportKey(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group1024, crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}

	S := srp.KeyFromInt(big.NewInt(0xC0FFEE), cfg.PadSize())

	k1, err := cfg.ExportKey(S, []byte("salt"), []byte("encryption"), 32)
	if err != nil {
		t.Fatal(err)
	}
	if len(k1) != 32 {
		t.Fatalf("got %d bytes, want 32", len(k1))
	}

	// Deterministic for identical inputs, distinct under different info.
	k2, err := cfg.ExportKey(S, []byte("salt"), []byte("encryption"), 32)
	if err != nil {
		t.Fatal(err)
	}
	k3, err := cfg.ExportKey(S, []byte("salt"), []byte("mac"), 32)
	if err != nil {
		t.Fatal(err)
	}
	if string(k1) != string(k2) {
		t.Error("export is not deterministic")
	}
	if string(k1) == string(k3) {
		t.Error("different info strings produced the same key")
	}

	if _, err := cfg.ExportKey(S, nil, nil, 0); err == nil {
		t.Error("expected error for zero-length export")
	}
}
