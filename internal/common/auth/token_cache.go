// internal/common/auth/token_cache.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
)

// DefaultBuffer is subtracted from a token's lifetime so it is never used in
// its final minutes.
const DefaultBuffer = 5 * time.Minute

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

// CachedToken is an access token and the instant it stops being served.
type CachedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenResponse holds the response from an OAuth2 token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	State       string `json:"state,omitempty"`
}

// TokenCache serves one client-credentials bearer token. Refreshes are not
// serialized: concurrent callers that see an expired token may each exchange,
// and the last swap wins.
type TokenCache struct {
	tokenURL     string
	clientID     string
	clientSecret string
	buffer       time.Duration
	httpClient   *http.Client
	now          Clock
	logger       logger.Logger

	current atomic.Pointer[CachedToken]
}

// Option customizes a TokenCache.
type Option func(*TokenCache)

func WithClock(c Clock) Option {
	return func(t *TokenCache) { t.now = c }
}

func WithBuffer(d time.Duration) Option {
	return func(t *TokenCache) { t.buffer = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(t *TokenCache) { t.httpClient = c }
}

func WithLogger(l logger.Logger) Option {
	return func(t *TokenCache) { t.logger = l }
}

// NewTokenCache creates a cache that exchanges credentials at tokenURL.
func NewTokenCache(tokenURL, clientID, clientSecret string, opts ...Option) *TokenCache {
	tc := &TokenCache{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		buffer:       DefaultBuffer,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
		logger:       logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(tc)
	}
	tc.logger = tc.logger.With(map[string]interface{}{"component": "token-cache"})
	return tc
}

// Token returns a valid bearer token, exchanging credentials only when the
// cached one is missing or past its buffered expiry.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if cached := c.current.Load(); cached != nil && c.now().Before(cached.ExpiresAt) {
		return cached.Token, nil
	}

	tokenResp, err := c.exchange(ctx)
	if err != nil {
		metrics.OAuthTokenExchangesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		c.logger.Error("Token exchange failed", map[string]interface{}{"error": err.Error()})
		return "", errors.NewTokenExchangeFailedError(err)
	}
	metrics.OAuthTokenExchangesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	issued := time.Duration(tokenResp.ExpiresIn) * time.Second
	lifetime := issued - c.buffer
	if lifetime <= 0 {
		// A token shorter than the buffer is served for half its lifetime.
		lifetime = issued / 2
		c.logger.Warn("Token lifetime is shorter than the refresh buffer", map[string]interface{}{
			"expiresIn": tokenResp.ExpiresIn,
			"buffer":    c.buffer.String(),
		})
	}
	next := &CachedToken{
		Token:     tokenResp.AccessToken,
		ExpiresAt: c.now().Add(lifetime),
	}
	c.current.Store(next)

	c.logger.Debug("Token refreshed", map[string]interface{}{
		"expiresIn": tokenResp.ExpiresIn,
		"expiresAt": next.ExpiresAt,
	})

	return next.Token, nil
}

// Invalidate drops the cached token, e.g. after the provider answered 401.
func (c *TokenCache) Invalidate() {
	c.current.Store(nil)
}

func (c *TokenCache) exchange(ctx context.Context) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}

	return &tokenResp, nil
}
