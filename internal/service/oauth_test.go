package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/domain"
	"github.com/xandwr/doctown-website/internal/service"
)

type fakeGitHub struct {
	exchangeErr error
	fetchErr    error
	user        *domain.GitHubUser
	exchanged   []string
}

func (f *fakeGitHub) AuthorizeURL(state string) (string, error) {
	return "https://github.com/login/oauth/authorize?state=" + url.QueryEscape(state), nil
}

func (f *fakeGitHub) ExchangeCode(_ context.Context, code string) (*domain.GitHubTokenResponse, error) {
	f.exchanged = append(f.exchanged, code)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &domain.GitHubTokenResponse{AccessToken: "gho_token", TokenType: "bearer"}, nil
}

func (f *fakeGitHub) FetchUser(context.Context, string) (*domain.GitHubUser, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.user != nil {
		return f.user, nil
	}
	return &domain.GitHubUser{ID: 42, Login: "octocat", AvatarURL: "https://a"}, nil
}

func testConfig() config.Config {
	return config.Config{
		StateCookieMaxAge:   10 * time.Minute,
		SessionCookieMaxAge: 30 * 24 * time.Hour,
	}
}

func TestBeginGeneratesDistinctStates(t *testing.T) {
	svc := service.NewOAuthService(&fakeGitHub{}, nil, nil, testConfig(), zap.NewNop())

	first, err := svc.Begin(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first.State)
	require.Contains(t, first.AuthorizeURL, url.QueryEscape(first.State))

	second, err := svc.Begin(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first.State, second.State)
}

func TestConsumeStateWithoutGuard(t *testing.T) {
	svc := service.NewOAuthService(&fakeGitHub{}, nil, nil, testConfig(), zap.NewNop())

	// No replay guard configured: every state passes.
	require.NoError(t, svc.ConsumeState(context.Background(), "any-state"))
	require.NoError(t, svc.ConsumeState(context.Background(), "any-state"))
}

func TestCompleteUsesBackendSessionToken(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/users", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"session_token":"sess-from-backend"}`))
	})
	gh := &fakeGitHub{}
	svc := service.NewOAuthService(gh, be, nil, testConfig(), zap.NewNop())

	result, err := svc.Complete(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, []string{"the-code"}, gh.exchanged)
	require.Equal(t, "sess-from-backend", result.SessionToken)
	require.Equal(t, "octocat", result.User.Login)
}

func TestCompleteFallsBackWhenUpsertFails(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	svc := service.NewOAuthService(&fakeGitHub{}, be, nil, testConfig(), zap.NewNop())

	result, err := svc.Complete(context.Background(), "the-code")
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionToken)
}

func TestCompleteFallsBackWhenTokenMissing(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"session_token":""}`))
	})
	svc := service.NewOAuthService(&fakeGitHub{}, be, nil, testConfig(), zap.NewNop())

	result, err := svc.Complete(context.Background(), "the-code")
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionToken)
}

func TestCompleteExchangeFailure(t *testing.T) {
	upserts := 0
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		upserts++
	})
	gh := &fakeGitHub{exchangeErr: errors.New("bad code")}
	svc := service.NewOAuthService(gh, be, nil, testConfig(), zap.NewNop())

	_, err := svc.Complete(context.Background(), "expired")
	require.Error(t, err)
	require.Zero(t, upserts)
}

func TestCompleteProfileFailure(t *testing.T) {
	gh := &fakeGitHub{fetchErr: errors.New("profile unavailable")}
	svc := service.NewOAuthService(gh, nil, nil, testConfig(), zap.NewNop())

	_, err := svc.Complete(context.Background(), "the-code")
	require.Error(t, err)
}
