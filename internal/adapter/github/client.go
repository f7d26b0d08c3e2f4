package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/domain"
)

// Client encapsulates outbound HTTP calls to GitHub's OAuth endpoints.
type Client interface {
	AuthorizeURL(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (*domain.GitHubTokenResponse, error)
	FetchUser(ctx context.Context, accessToken string) (*domain.GitHubUser, error)
}

// Scopes requested from GitHub: profile read plus repository access.
const Scopes = "read:user repo"

// HTTPClient is the default HTTP implementation of Client.
type HTTPClient struct {
	cfg        config.Config
	httpClient *http.Client
}

// NewHTTPClient constructs the default GitHub client.
func NewHTTPClient(cfg config.Config, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{cfg: cfg, httpClient: client}
}

// AuthorizeURL builds the GitHub authorization URL carrying the
// anti-forgery state token.
func (c *HTTPClient) AuthorizeURL(state string) (string, error) {
	authURL, err := url.Parse(c.cfg.GitHubAuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize url: %w", err)
	}
	params := authURL.Query()
	params.Set("client_id", c.cfg.GitHubClientID)
	params.Set("redirect_uri", c.cfg.GitHubCallbackURL)
	params.Set("scope", Scopes)
	params.Set("state", state)
	authURL.RawQuery = params.Encode()
	return authURL.String(), nil
}

// ExchangeCode swaps an authorization code for an access token. GitHub
// accepts a JSON body and returns JSON when asked via the Accept header.
func (c *HTTPClient) ExchangeCode(ctx context.Context, code string) (*domain.GitHubTokenResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.GitHubClientID,
		"client_secret": c.cfg.GitHubClientSecret,
		"code":          code,
	})
	if err != nil {
		return nil, fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GitHubTokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token exchange failed: status=%d", resp.StatusCode)
	}

	var token domain.GitHubTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, fmt.Errorf("token exchange returned no access token")
	}
	return &token, nil
}

// FetchUser loads the authenticated GitHub user profile.
func (c *HTTPClient) FetchUser(ctx context.Context, accessToken string) (*domain.GitHubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.GitHubUserURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user profile request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read user profile: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("user profile failed: status=%d", resp.StatusCode)
	}

	var user domain.GitHubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode user profile: %w", err)
	}
	return &user, nil
}
