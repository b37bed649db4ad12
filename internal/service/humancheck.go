package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dextryayers/rujukan-jatim/internal/config"
)

// HumanCheck verifies proof-of-humanity tokens against an external
// verification API. With no secret configured the check is disabled and
// always passes. A bypass token lets trusted internal callers skip the
// remote call. On remote trouble the FailOpen switch decides the outcome.
type HumanCheck struct {
	cfg    config.HumanCheckConfig
	client *http.Client
	log    zerolog.Logger
}

func NewHumanCheck(cfg config.HumanCheckConfig, log zerolog.Logger) *HumanCheck {
	return &HumanCheck{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

func (h *HumanCheck) Enabled() bool {
	return h.cfg.Secret != ""
}

type verifyResponse struct {
	Success bool     `json:"success"`
	Action  string   `json:"action"`
	Score   *float64 `json:"score"`
}

func (h *HumanCheck) Verify(ctx context.Context, token, action string) bool {
	if h.cfg.Secret == "" {
		return true
	}

	if token != "" && h.cfg.BypassToken != "" &&
		subtle.ConstantTimeCompare([]byte(h.cfg.BypassToken), []byte(token)) == 1 {
		return true
	}

	if token == "" {
		return h.cfg.FailOpen
	}

	form := url.Values{}
	form.Set("secret", h.cfg.Secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		h.log.Error().Err(err).Msg("build human-check request")
		return h.cfg.FailOpen
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warn().Err(err).Msg("human-check call failed")
		return h.cfg.FailOpen
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.log.Warn().Int("status", resp.StatusCode).Msg("human-check non-ok response")
		return h.cfg.FailOpen
	}

	var data verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		h.log.Warn().Err(err).Msg("decode human-check response")
		return h.cfg.FailOpen
	}

	if !data.Success {
		return h.cfg.FailOpen
	}
	if data.Action != "" && action != "" && data.Action != action {
		return h.cfg.FailOpen
	}
	// A score of exactly 0 is the strongest bot signal, so only an absent
	// score skips the threshold.
	if data.Score != nil && *data.Score < h.cfg.ScoreThreshold {
		return h.cfg.FailOpen
	}

	return true
}
