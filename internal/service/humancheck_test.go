package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dextryayers/rujukan-jatim/internal/config"
)

func verifyServer(t *testing.T, response map[string]any, status int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("secret"))
		assert.NotEmpty(t, r.PostForm.Get("response"))

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHumanCheck(cfg config.HumanCheckConfig) *HumanCheck {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	return NewHumanCheck(cfg, zerolog.Nop())
}

func TestVerifyDisabledWithoutSecret(t *testing.T) {
	check := newHumanCheck(config.HumanCheckConfig{})
	assert.True(t, check.Verify(context.Background(), "", "login"))
	assert.False(t, check.Enabled())
}

func TestVerifyBypassToken(t *testing.T) {
	check := newHumanCheck(config.HumanCheckConfig{
		Secret:      "secret",
		BypassToken: "let-me-in",
		VerifyURL:   "http://127.0.0.1:1", // must never be reached
	})
	assert.True(t, check.Verify(context.Background(), "let-me-in", "login"))
}

func TestVerifyMissingTokenFollowsFailOpen(t *testing.T) {
	closed := newHumanCheck(config.HumanCheckConfig{Secret: "secret", FailOpen: false})
	assert.False(t, closed.Verify(context.Background(), "", "login"))

	open := newHumanCheck(config.HumanCheckConfig{Secret: "secret", FailOpen: true})
	assert.True(t, open.Verify(context.Background(), "", "login"))
}

func TestVerifySuccess(t *testing.T) {
	srv := verifyServer(t, map[string]any{"success": true, "action": "login", "score": 0.9}, http.StatusOK)

	check := newHumanCheck(config.HumanCheckConfig{
		Secret:         "secret",
		VerifyURL:      srv.URL,
		ScoreThreshold: 0.5,
	})
	assert.True(t, check.Verify(context.Background(), "token", "login"))
}

func TestVerifyActionMismatch(t *testing.T) {
	srv := verifyServer(t, map[string]any{"success": true, "action": "register", "score": 0.9}, http.StatusOK)

	check := newHumanCheck(config.HumanCheckConfig{
		Secret:         "secret",
		VerifyURL:      srv.URL,
		ScoreThreshold: 0.5,
	})
	assert.False(t, check.Verify(context.Background(), "token", "login"))
}

func TestVerifyLowScore(t *testing.T) {
	srv := verifyServer(t, map[string]any{"success": true, "action": "login", "score": 0.2}, http.StatusOK)

	check := newHumanCheck(config.HumanCheckConfig{
		Secret:         "secret",
		VerifyURL:      srv.URL,
		ScoreThreshold: 0.5,
	})
	assert.False(t, check.Verify(context.Background(), "token", "login"))
}

func TestVerifyZeroScoreFailsThreshold(t *testing.T) {
	srv := verifyServer(t, map[string]any{"success": true, "action": "login", "score": 0.0}, http.StatusOK)

	check := newHumanCheck(config.HumanCheckConfig{
		Secret:         "secret",
		VerifyURL:      srv.URL,
		ScoreThreshold: 0.5,
	})
	assert.False(t, check.Verify(context.Background(), "token", "login"))
}

func TestVerifyAbsentScorePasses(t *testing.T) {
	srv := verifyServer(t, map[string]any{"success": true, "action": "login"}, http.StatusOK)

	check := newHumanCheck(config.HumanCheckConfig{
		Secret:         "secret",
		VerifyURL:      srv.URL,
		ScoreThreshold: 0.5,
	})
	assert.True(t, check.Verify(context.Background(), "token", "login"))
}

func TestVerifyRemoteErrorFailOpen(t *testing.T) {
	srv := verifyServer(t, map[string]any{}, http.StatusBadGateway)

	open := newHumanCheck(config.HumanCheckConfig{
		Secret:    "secret",
		VerifyURL: srv.URL,
		FailOpen:  true,
	})
	assert.True(t, open.Verify(context.Background(), "token", "login"))

	closed := newHumanCheck(config.HumanCheckConfig{
		Secret:    "secret",
		VerifyURL: srv.URL,
		FailOpen:  false,
	})
	assert.False(t, closed.Verify(context.Background(), "token", "login"))
}
