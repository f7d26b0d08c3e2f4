package github_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xandwr/doctown-website/internal/adapter/github"
	"github.com/xandwr/doctown-website/internal/config"
)

func TestAuthorizeURL(t *testing.T) {
	cfg := config.Config{
		GitHubClientID:     "client-id",
		GitHubCallbackURL:  "http://localhost:8080/auth/callback",
		GitHubAuthorizeURL: "https://github.com/login/oauth/authorize",
	}
	client := github.NewHTTPClient(cfg, nil)

	raw, err := client.AuthorizeURL("state-123")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "github.com", parsed.Host)

	q := parsed.Query()
	require.Equal(t, "client-id", q.Get("client_id"))
	require.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))
	require.Equal(t, github.Scopes, q.Get("scope"))
	require.Equal(t, "state-123", q.Get("state"))
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))

		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "client-id", payload["client_id"])
		require.Equal(t, "client-secret", payload["client_secret"])
		require.Equal(t, "the-code", payload["code"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_token",
			"token_type":   "bearer",
			"scope":        "read:user,repo",
		})
	}))
	defer srv.Close()

	cfg := config.Config{
		GitHubClientID:     "client-id",
		GitHubClientSecret: "client-secret",
		GitHubTokenURL:     srv.URL,
	}
	client := github.NewHTTPClient(cfg, srv.Client())

	token, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "gho_token", token.AccessToken)
}

func TestExchangeCodeRejectsEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"bad_verification_code"}`))
	}))
	defer srv.Close()

	client := github.NewHTTPClient(config.Config{GitHubTokenURL: srv.URL}, srv.Client())

	_, err := client.ExchangeCode(context.Background(), "expired-code")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no access token")
}

func TestExchangeCodeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := github.NewHTTPClient(config.Config{GitHubTokenURL: srv.URL}, srv.Client())

	_, err := client.ExchangeCode(context.Background(), "the-code")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=502")
}

func TestFetchUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer gho_token", r.Header.Get("Authorization"))
		require.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"login":"octocat","avatar_url":"https://avatars.example/42"}`))
	}))
	defer srv.Close()

	client := github.NewHTTPClient(config.Config{GitHubUserURL: srv.URL}, srv.Client())

	user, err := client.FetchUser(context.Background(), "gho_token")
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)
	require.Equal(t, "octocat", user.Login)
	require.Equal(t, "https://avatars.example/42", user.AvatarURL)
}

func TestFetchUserUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := github.NewHTTPClient(config.Config{GitHubUserURL: srv.URL}, srv.Client())

	_, err := client.FetchUser(context.Background(), "revoked")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=401")
}
