package main

import (
	"crypto"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srpgate/srpgate/internal/api/handlers"
	"github.com/srpgate/srpgate/internal/auth"
	"github.com/srpgate/srpgate/internal/logging"
	"github.com/srpgate/srpgate/pkg/protocol"
	"github.com/srpgate/srpgate/pkg/srp"
)

func TestReadPasswordFromEnv(t *testing.T) {
	t.Setenv("SRPGATE_PASSWORD", "from the env")

	password, err := readPassword()
	require.NoError(t, err)
	assert.Equal(t, "from the env", password)
}

// Spins up the real handlers behind httptest and drives the same HTTP
// exchange the login command performs.
func TestLoginExchangeAgainstService(t *testing.T) {
	cfg, err := srp.NewConfig(srp.Group2048, crypto.SHA256)
	require.NoError(t, err)

	registry, err := auth.NewFileRegistry(t.TempDir())
	require.NoError(t, err)
	_, err = auth.Enroll(cfg, registry, "alice", "a decent password")
	require.NoError(t, err)

	secret, err := auth.GenerateSessionSecret()
	require.NoError(t, err)
	sessions := auth.NewSessionManager(secret, 30*time.Minute)
	t.Cleanup(sessions.Stop)
	limiter := auth.NewRateLimiter()
	t.Cleanup(limiter.Stop)

	logger := logging.New(logging.LevelError, logging.FormatJSON)
	logger.SetOutput(io.Discard, io.Discard)

	handler := handlers.NewAuthHandler(registry, auth.NewHandshakeStore(time.Minute), sessions, limiter, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/srp/init", handler.HandleSRPInit)
	mux.HandleFunc("/auth/srp/verify", handler.HandleSRPVerify)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	httpClient := newHTTPClient(false, 10*time.Second)
	client := srp.NewClient(cfg)
	keys, err := client.GenerateKeys()
	require.NoError(t, err)

	var initResp protocol.SRPInitResponse
	require.NoError(t, postJSON(httpClient, server.URL+"/auth/srp/init", "", protocol.SRPInitRequest{
		Username: "alice",
		A:        base64.StdEncoding.EncodeToString(keys.Public.PaddedBytes()),
	}, &initResp))

	salt, err := base64.StdEncoding.DecodeString(initResp.Salt)
	require.NoError(t, err)
	bBytes, err := base64.StdEncoding.DecodeString(initResp.B)
	require.NoError(t, err)
	B, err := srp.KeyFromBytes(bBytes, cfg.PadSize())
	require.NoError(t, err)

	S, err := client.SharedSecret("alice", "a decent password", salt, keys, B)
	require.NoError(t, err)
	m1, err := client.ClientProof("alice", salt, keys.Public, B, S)
	require.NoError(t, err)

	var verifyResp protocol.SRPVerifyResponse
	require.NoError(t, postJSON(httpClient, server.URL+"/auth/srp/verify", "", protocol.SRPVerifyRequest{
		HandshakeID: initResp.HandshakeID,
		M1:          base64.StdEncoding.EncodeToString(m1),
	}, &verifyResp))

	m2, err := base64.StdEncoding.DecodeString(verifyResp.M2)
	require.NoError(t, err)
	assert.NoError(t, client.VerifyServerProof(m2, m1, keys.Public, S))
	assert.NotEmpty(t, verifyResp.Token)
}

func TestPostJSONSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"AUTHENTICATION_FAILED","message":"Authentication failed"}`))
	}))
	t.Cleanup(server.Close)

	httpClient := newHTTPClient(false, 10*time.Second)

	var out struct{}
	err := postJSON(httpClient, server.URL+"/auth/srp/init", "", map[string]string{}, &out)
	require.Error(t, err)

	var apiErr *protocol.ErrorResponse
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, protocol.ErrCodeAuthenticationFailed, apiErr.Code)
}
