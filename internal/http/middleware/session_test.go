package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/adapter/backend"
	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/http/middleware"
	"github.com/xandwr/doctown-website/internal/service"
)

func newSessionRouter(t *testing.T, backendHandler http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	be := backend.NewClient(config.Config{BackendURL: srv.URL}, srv.Client())
	validator := service.NewSessionValidator(be, zap.NewNop())

	r := gin.New()
	r.Use(middleware.Session(validator))
	r.GET("/whoami", func(c *gin.Context) {
		if user, ok := middleware.CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"username": user.Username})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": nil})
	})
	return r
}

func TestSessionAttachesUser(t *testing.T) {
	r := newSessionRouter(t, func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "Bearer sess-1", req.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":7,"github_id":42,"username":"octocat"}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "octocat")
}

func TestSessionProceedsWithoutCookie(t *testing.T) {
	r := newSessionRouter(t, func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("backend must not be called without a session cookie")
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "null")
}

func TestSessionProceedsOnInvalidToken(t *testing.T) {
	r := newSessionRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "stale"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "null")
}
