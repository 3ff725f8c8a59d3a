// Srpgated is a password-authenticated gateway service: clients prove
// knowledge of their password with SRP-6a without ever sending it, and
// receive a bearer token for subsequent requests.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/srpgate/srpgate/internal/api"
	"github.com/srpgate/srpgate/internal/api/handlers"
	"github.com/srpgate/srpgate/internal/api/middleware"
	"github.com/srpgate/srpgate/internal/auth"
	"github.com/srpgate/srpgate/internal/config"
	"github.com/srpgate/srpgate/internal/logging"
)

var (
	// version is set by build flags
	version = "dev"
	// commit is set by build flags
	commit = "none"
)

func main() {
	configPath := flag.String("config", "/etc/srpgate/config.yaml", "path to configuration file")
	flag.Parse()

	logger := logging.New(logging.LevelInfo, logging.FormatJSON)

	if err := run(*configPath, logger); err != nil {
		logger.Error("service failed", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func run(configPath string, logger *logging.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Recreate the logger with the configured level and format.
	logger = logging.New(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))

	logger.Info("srpgate service starting", map[string]any{
		"version":        version,
		"commit":         commit,
		"listen_address": fmt.Sprintf("%s:%d", cfg.Service.ListenAddress, cfg.Service.Port),
		"group":          cfg.SRP.Group,
		"hash":           cfg.SRP.Hash,
		"session_ttl":    cfg.Service.SessionTTL,
		"handshake_ttl":  cfg.Service.HandshakeTTL,
	})

	registry, err := auth.NewFileRegistry(cfg.Registry.Directory)
	if err != nil {
		return fmt.Errorf("failed to open verifier registry: %w", err)
	}

	sessionTTL, err := cfg.GetSessionTTL()
	if err != nil {
		return err
	}
	handshakeTTL, err := cfg.GetHandshakeTTL()
	if err != nil {
		return err
	}

	// Tokens are signed with a per-process secret; a restart invalidates
	// all outstanding sessions.
	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return err
	}

	sessions := auth.NewSessionManager(secret, sessionTTL)
	defer sessions.Stop()

	limiter := auth.NewRateLimiter()
	defer limiter.Stop()

	handshakes := auth.NewHandshakeStore(handshakeTTL)

	authHandler := handlers.NewAuthHandler(registry, handshakes, sessions, limiter, logger)

	server, err := api.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(sessions)
	chain := func(h http.Handler) http.Handler {
		return middleware.Logging(logger)(middleware.ErrorHandler(logger)(h))
	}

	server.RegisterRoute("/auth/srp/init", chain(http.HandlerFunc(authHandler.HandleSRPInit)))
	server.RegisterRoute("/auth/srp/verify", chain(http.HandlerFunc(authHandler.HandleSRPVerify)))
	server.RegisterRoute("/auth/logout", chain(authMiddleware.Require(http.HandlerFunc(authHandler.HandleLogout))))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", map[string]any{
			"signal": sig.String(),
		})
		cancel()
	}()

	notifySystemd("READY=1")

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("srpgate service stopped")
	notifySystemd("STOPPING=1")

	return nil
}

// notifySystemd sends a notification to systemd if NOTIFY_SOCKET is set.
// This enables systemd Type=notify service management.
func notifySystemd(state string) {
	notifySocket := os.Getenv("NOTIFY_SOCKET")
	if notifySocket == "" {
		return
	}

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: notifySocket, Net: "unixgram"})
	if err != nil {
		// Systemd notification is optional.
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	_, _ = conn.Write([]byte(state))
}
