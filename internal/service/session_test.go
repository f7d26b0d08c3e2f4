package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/adapter/backend"
	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/service"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.NewClient(config.Config{BackendURL: srv.URL}, srv.Client())
}

func TestValidateResolvesUser(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/me", r.URL.Path)
		require.Equal(t, "Bearer sess-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":7,"github_id":42,"username":"octocat"}`))
	})
	validator := service.NewSessionValidator(be, zap.NewNop())

	user := validator.Validate(context.Background(), "sess-1")
	require.NotNil(t, user)
	require.Equal(t, "octocat", user.Username)
}

func TestValidateEmptyToken(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called for an empty token")
	})
	validator := service.NewSessionValidator(be, zap.NewNop())

	require.Nil(t, validator.Validate(context.Background(), ""))
}

func TestValidateRejectedToken(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	validator := service.NewSessionValidator(be, zap.NewNop())

	require.Nil(t, validator.Validate(context.Background(), "stale"))
}

func TestValidateBackendUnreachable(t *testing.T) {
	be := backend.NewClient(config.Config{BackendURL: "http://127.0.0.1:0"}, nil)
	validator := service.NewSessionValidator(be, zap.NewNop())

	require.Nil(t, validator.Validate(context.Background(), "sess-1"))
}
