package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/noneca/meli-sync/configs"
)

// tokenGracePeriod is subtracted from expires_at when checking validity, so a
// token about to expire mid-extraction is refreshed up front.
const tokenGracePeriod = 5 * time.Minute

// refreshAttempts bounds the retry loop around the token refresh call.
const refreshAttempts = 3

// Token holds the OAuth credentials persisted to the token file.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used, leaving the grace period
// before the actual expiry.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-tokenGracePeriod))
}

// TokenManager loads, refreshes and persists OAuth tokens. Tokens are never
// deleted, only superseded: a successful refresh rewrites the token file and
// a failed refresh falls back to the statically configured credentials.
type TokenManager struct {
	cfg        *configs.MeliConfig
	httpClient *http.Client
	logger     *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewTokenManager creates a manager backed by the configured token file.
func NewTokenManager(cfg *configs.MeliConfig, logger *slog.Logger) *TokenManager {
	return &TokenManager{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:     logger.With("component", "tokens"),
		now:        time.Now,
	}
}

// Load reads the token file, falling back to static configuration when the
// file is absent or unreadable.
func (m *TokenManager) Load() *Token {
	data, err := os.ReadFile(m.cfg.TokenFile)
	if err == nil {
		var t Token
		if err := json.Unmarshal(data, &t); err == nil {
			return &t
		}
		m.logger.Warn("Token file is malformed, using fallback credentials", "file", m.cfg.TokenFile)
	}
	return m.fallback()
}

// fallback builds a token from the statically configured credentials.
func (m *TokenManager) fallback() *Token {
	t := &Token{
		AccessToken:  m.cfg.FallbackAccess,
		TokenType:    "Bearer",
		ExpiresIn:    21600,
		RefreshToken: m.cfg.FallbackRefresh,
	}
	if m.cfg.FallbackExpires != "" {
		if exp, err := time.Parse(time.RFC3339, m.cfg.FallbackExpires); err == nil {
			t.ExpiresAt = exp
		}
	}
	return t
}

// Save computes expires_at from expires_in and rewrites the token file.
func (m *TokenManager) Save(t *Token) error {
	t.ExpiresAt = m.now().Add(time.Duration(t.ExpiresIn) * time.Second)
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	if err := os.WriteFile(m.cfg.TokenFile, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// AccessToken resolves the bearer token for the next request. A valid stored
// token is used as-is; an expired one with a refresh token is exchanged and
// persisted. Refresh failures are swallowed: the pipeline proceeds on the
// fallback credentials and lets a later 401 surface naturally.
func (m *TokenManager) AccessToken(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := m.Load()
	if tokens.Valid(m.now()) {
		return tokens.AccessToken
	}

	if tokens.RefreshToken != "" {
		refreshed, err := m.refresh(ctx, tokens.RefreshToken)
		if err == nil {
			if err := m.Save(refreshed); err != nil {
				m.logger.Warn("Failed to persist refreshed tokens", "error", err)
			}
			return refreshed.AccessToken
		}
		m.logger.Warn("Token refresh failed, continuing on fallback credentials", "error", err)
	}

	return m.fallback().AccessToken
}

// refresh exchanges the refresh token for a new token via the OAuth endpoint.
func (m *TokenManager) refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", m.cfg.ClientID)
	form.Set("client_secret", m.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)

	var refreshed Token
	backoff := retry.WithMaxRetries(refreshAttempts-1, retry.NewConstant(2*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			m.cfg.APIURL+"/oauth/token", strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.RetryableError(classifyStatus(resp.StatusCode, "/oauth/token", string(body)))
		}
		return json.Unmarshal(body, &refreshed)
	})
	if err != nil {
		return nil, err
	}
	return &refreshed, nil
}
