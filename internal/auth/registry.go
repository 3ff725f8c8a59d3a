// Package auth implements the server-side authentication machinery for
// srpgate: the verifier registry, pending-handshake store, session manager,
// and brute-force rate limiter.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/srpgate/srpgate/internal/config"
	"github.com/srpgate/srpgate/pkg/srp"
)

//go:generate go tool mockgen -source=registry.go -destination=mock_registry.go -package=auth

var (
	// ErrUserNotFound is returned when no verifier record exists for a username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when enrolling a username that already has a record.
	ErrUserExists = errors.New("user already enrolled")

	// ErrInvalidUsername is returned for usernames that cannot be stored safely.
	ErrInvalidUsername = errors.New("invalid username")
)

// VerifierRecord is the persisted enrollment state for one user. The salt
// and verifier are public-ish in SRP terms (they do not reveal the password
// directly) but are still protected on disk because they enable offline
// dictionary attacks.
type VerifierRecord struct {
	Username string `json:"username"`
	Salt     string `json:"salt"`     // base64
	Verifier string `json:"verifier"` // hex
	Group    int    `json:"group"`    // prime group size in bits
	Hash     string `json:"hash"`     // digest name, e.g. "sha256"
}

// SaltBytes decodes the stored salt.
func (r *VerifierRecord) SaltBytes() ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(r.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt for %q: %w", r.Username, err)
	}
	return salt, nil
}

// VerifierKey decodes the stored verifier with the given pad width.
func (r *VerifierRecord) VerifierKey(padSize int) (*srp.Key, error) {
	v, err := srp.KeyFromHex(r.Verifier, padSize)
	if err != nil {
		return nil, fmt.Errorf("failed to decode verifier for %q: %w", r.Username, err)
	}
	return v, nil
}

// Config reconstructs the SRP parameters this record was enrolled under.
func (r *VerifierRecord) Config() (*srp.Config, error) {
	h, err := config.HashFromName(r.Hash)
	if err != nil {
		return nil, err
	}
	return srp.NewConfig(r.Group, h)
}

// Registry stores and retrieves verifier records.
type Registry interface {
	// Lookup returns the record for username, or ErrUserNotFound.
	Lookup(username string) (*VerifierRecord, error)

	// Save persists a record, overwriting any existing one for the same user.
	Save(record *VerifierRecord) error
}

// FileRegistry is a Registry backed by one JSON file per user in a directory.
type FileRegistry struct {
	dir string
}

// NewFileRegistry creates a registry rooted at dir, creating it if needed.
func NewFileRegistry(dir string) (*FileRegistry, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	return &FileRegistry{dir: dir}, nil
}

// Lookup implements Registry.
func (fr *FileRegistry) Lookup(username string) (*VerifierRecord, error) {
	path, err := fr.recordPath(username)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read verifier record: %w", err)
	}

	var record VerifierRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse verifier record: %w", err)
	}
	if record.Username != username {
		return nil, fmt.Errorf("verifier record username mismatch: have %q, want %q", record.Username, username)
	}
	return &record, nil
}

// Save implements Registry. The record is written atomically via a temp
// file rename so a crash cannot leave a half-written record.
func (fr *FileRegistry) Save(record *VerifierRecord) error {
	path, err := fr.recordPath(record.Username)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode verifier record: %w", err)
	}

	tmp, err := os.CreateTemp(fr.dir, ".record-*")
	if err != nil {
		return fmt.Errorf("failed to create temp record: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write verifier record: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set record permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close verifier record: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to store verifier record: %w", err)
	}
	return nil
}

// recordPath maps a username to its file. The name is base64url-encoded so
// usernames cannot escape the registry directory or collide case-insensitively.
func (fr *FileRegistry) recordPath(username string) (string, error) {
	if username == "" || len(username) > 255 {
		return "", ErrInvalidUsername
	}
	if strings.ContainsAny(username, "\x00") {
		return "", ErrInvalidUsername
	}
	name := base64.URLEncoding.EncodeToString([]byte(username)) + ".json"
	return filepath.Join(fr.dir, name), nil
}

// Enroll derives a fresh salt and verifier for the credentials and stores
// the record. Existing enrollments are not overwritten.
func Enroll(cfg *srp.Config, registry Registry, username, password string) (*VerifierRecord, error) {
	if username == "" {
		return nil, ErrInvalidUsername
	}

	if _, err := registry.Lookup(username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	client := srp.NewClient(cfg)
	salt, verifier, err := client.GenerateSaltAndVerifier(username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to derive verifier: %w", err)
	}

	record := &VerifierRecord{
		Username: username,
		Salt:     base64.StdEncoding.EncodeToString(salt),
		Verifier: verifier.Hex(),
		Group:    cfg.GroupBits(),
		Hash:     config.HashName(cfg.Hash()),
	}
	if err := registry.Save(record); err != nil {
		return nil, err
	}
	return record, nil
}
