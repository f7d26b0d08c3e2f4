package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/domain"
	"github.com/xandwr/doctown-website/internal/http/middleware"
	"github.com/xandwr/doctown-website/internal/service"
)

// StateCookieName is the short-lived anti-forgery cookie set during the
// OAuth handshake.
const StateCookieName = "oauth_state"

// AuthHandler owns the GitHub login, callback, and logout routes.
type AuthHandler struct {
	OAuth  service.OAuthService
	Cfg    config.Config
	Logger *zap.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(oauth service.OAuthService, cfg config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{OAuth: oauth, Cfg: cfg, Logger: logger}
}

// Login starts the OAuth handshake: generate the anti-forgery state,
// pin it in a cookie, and send the browser to GitHub.
// GET /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	start, err := h.OAuth.Begin(c.Request.Context())
	if err != nil {
		h.log().Error("login initiation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start login"})
		return
	}

	// Deliberately not Secure: the cookie must survive the localhost
	// round trip during development, and it expires in minutes.
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     StateCookieName,
		Value:    start.State,
		Path:     "/",
		MaxAge:   int(h.Cfg.StateCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})

	c.Redirect(http.StatusFound, start.AuthorizeURL)
}

// Callback finishes the OAuth handshake. Validation fails closed with
// 400 before any network call; the state cookie is single use and is
// cleared the moment it matches.
// GET /auth/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	storedState, cookieErr := c.Cookie(StateCookieName)

	h.log().Debug("oauth callback received",
		zap.Bool("code_present", code != ""),
		zap.Bool("state_present", state != ""),
		zap.Bool("state_cookie_present", cookieErr == nil))

	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing state parameter"})
		return
	}
	if cookieErr != nil || storedState == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing state cookie - cookies may be blocked"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(storedState)) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "State mismatch - possible CSRF attack"})
		return
	}

	h.clearStateCookie(c)

	if err := h.OAuth.ConsumeState(c.Request.Context(), state); err != nil {
		if errors.Is(err, domain.ErrStateReplayed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "State already used"})
			return
		}
		// Guard outage: the cookie comparison above already passed, so
		// proceed on cookie-only validation.
		h.log().Warn("state replay guard unavailable", zap.Error(err))
	}

	result, err := h.OAuth.Complete(c.Request.Context(), code)
	if err != nil {
		h.log().Error("oauth callback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		MaxAge:   int(h.Cfg.SessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})

	c.Redirect(http.StatusFound, "/")
}

// LogoutConfirm clears the session cookie and sends the browser home.
// No validation, no backend call.
// GET /auth/logout/confirm
func (h *AuthHandler) LogoutConfirm(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) clearStateCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) log() *zap.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}
