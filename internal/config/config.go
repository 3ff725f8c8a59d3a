// Package config provides configuration loading and validation for the
// srpgate service.
package config

import (
	"crypto"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the srpgate service configuration.
type Config struct {
	Service  ServiceSettings  `yaml:"service"`
	SRP      SRPSettings      `yaml:"srp"`
	Registry RegistrySettings `yaml:"registry"`
	Logging  LoggingSettings  `yaml:"logging"`
	TLS      TLSSettings      `yaml:"tls"`
}

// ServiceSettings contains service-level configuration.
type ServiceSettings struct {
	ListenAddress string `yaml:"listen_address"`
	Port          int    `yaml:"port"`
	SessionTTL    string `yaml:"session_ttl"`
	HandshakeTTL  string `yaml:"handshake_ttl"`
}

// SRPSettings selects the SRP group and digest.
type SRPSettings struct {
	Group int    `yaml:"group"`
	Hash  string `yaml:"hash"`
}

// RegistrySettings locates the verifier registry.
type RegistrySettings struct {
	Directory string `yaml:"directory"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TLSSettings holds the optional certificate pair. When both paths are
// empty the server speaks plain HTTP and expects a terminating proxy.
type TLSSettings struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// Defaults applied to fields left empty in the file.
const (
	DefaultListenAddress = "127.0.0.1"
	DefaultPort          = 4430
	DefaultSessionTTL    = "30m"
	DefaultHandshakeTTL  = "2m"
	DefaultGroup         = 2048
	DefaultHash          = "sha256"
)

// Load reads and parses the configuration file, applies defaults, and
// validates the result.
//
//nolint:gosec // G304: config path comes from a command-line argument
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	// Environment override for the registry directory (useful for tests).
	if dir := os.Getenv("SRPGATE_REGISTRY_DIR"); dir != "" {
		cfg.Registry.Directory = dir
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.ListenAddress == "" {
		c.Service.ListenAddress = DefaultListenAddress
	}
	if c.Service.Port == 0 {
		c.Service.Port = DefaultPort
	}
	if c.Service.SessionTTL == "" {
		c.Service.SessionTTL = DefaultSessionTTL
	}
	if c.Service.HandshakeTTL == "" {
		c.Service.HandshakeTTL = DefaultHandshakeTTL
	}
	if c.SRP.Group == 0 {
		c.SRP.Group = DefaultGroup
	}
	if c.SRP.Hash == "" {
		c.SRP.Hash = DefaultHash
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// GetSessionTTL parses the session TTL.
func (c *Config) GetSessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Service.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid session_ttl %q: %w", c.Service.SessionTTL, err)
	}
	return d, nil
}

// GetHandshakeTTL parses the handshake TTL.
func (c *Config) GetHandshakeTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Service.HandshakeTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid handshake_ttl %q: %w", c.Service.HandshakeTTL, err)
	}
	return d, nil
}

// GetHash maps the configured hash name to a crypto.Hash.
func (c *Config) GetHash() (crypto.Hash, error) {
	return HashFromName(c.SRP.Hash)
}

// HashFromName resolves a digest name used in configs and registry records.
func HashFromName(name string) (crypto.Hash, error) {
	switch name {
	case "sha1":
		return crypto.SHA1, nil
	case "sha256":
		return crypto.SHA256, nil
	case "sha384":
		return crypto.SHA384, nil
	case "sha512":
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("unsupported hash %q (supported: sha1, sha256, sha384, sha512)", name)
	}
}

// HashName is the inverse of HashFromName for persisting records.
func HashName(h crypto.Hash) string {
	switch h {
	case crypto.SHA1:
		return "sha1"
	case crypto.SHA256:
		return "sha256"
	case crypto.SHA384:
		return "sha384"
	case crypto.SHA512:
		return "sha512"
	default:
		return ""
	}
}
