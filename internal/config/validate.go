package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/srpgate/srpgate/pkg/srp"
)

// MinSessionTTL bounds how short sessions may live; shorter values are
// almost always a configuration mistake.
const MinSessionTTL = time.Minute

// MaxHandshakeTTL bounds how long an unfinished handshake may be held.
const MaxHandshakeTTL = 10 * time.Minute

// Validate performs comprehensive validation on the configuration.
func Validate(cfg *Config) error {
	if err := validateService(cfg); err != nil {
		return fmt.Errorf("service validation failed: %w", err)
	}
	if err := validateSRP(cfg); err != nil {
		return fmt.Errorf("srp validation failed: %w", err)
	}
	if err := validateRegistry(cfg); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}
	if err := validateTLS(cfg); err != nil {
		return fmt.Errorf("tls validation failed: %w", err)
	}
	return nil
}

func validateService(cfg *Config) error {
	if cfg.Service.Port <= 0 || cfg.Service.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	sessionTTL, err := cfg.GetSessionTTL()
	if err != nil {
		return err
	}
	if sessionTTL < MinSessionTTL {
		return fmt.Errorf("session_ttl must be at least %s", MinSessionTTL)
	}

	handshakeTTL, err := cfg.GetHandshakeTTL()
	if err != nil {
		return err
	}
	if handshakeTTL <= 0 {
		return fmt.Errorf("handshake_ttl must be positive")
	}
	if handshakeTTL > MaxHandshakeTTL {
		return fmt.Errorf("handshake_ttl must not exceed %s", MaxHandshakeTTL)
	}

	return nil
}

func validateSRP(cfg *Config) error {
	if !slices.Contains(srp.SupportedGroups(), cfg.SRP.Group) {
		return fmt.Errorf("group must be one of %v, got %d", srp.SupportedGroups(), cfg.SRP.Group)
	}
	if cfg.SRP.Group < srp.Group2048 {
		// Smaller groups stay available for interop testing but are not
		// acceptable as a service default.
		return fmt.Errorf("group %d is too small for production use (minimum %d)", cfg.SRP.Group, srp.Group2048)
	}
	if _, err := cfg.GetHash(); err != nil {
		return err
	}
	return nil
}

func validateRegistry(cfg *Config) error {
	if cfg.Registry.Directory == "" {
		return fmt.Errorf("registry directory is required")
	}
	if !filepath.IsAbs(cfg.Registry.Directory) {
		return fmt.Errorf("registry directory must be an absolute path")
	}
	return nil
}

func validateLogging(cfg *Config) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("logging level must be one of %v", validLevels)
	}
	validFormats := []string{"json", "human"}
	if !slices.Contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("logging format must be one of %v", validFormats)
	}
	return nil
}

func validateTLS(cfg *Config) error {
	if (cfg.TLS.Cert == "") != (cfg.TLS.Key == "") {
		return fmt.Errorf("tls cert and key must be set together")
	}
	if cfg.TLS.Cert != "" && !filepath.IsAbs(cfg.TLS.Cert) {
		return fmt.Errorf("tls cert must be an absolute path")
	}
	if cfg.TLS.Key != "" && !filepath.IsAbs(cfg.TLS.Key) {
		return fmt.Errorf("tls key must be an absolute path")
	}
	return nil
}
