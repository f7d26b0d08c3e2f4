package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xandwr/doctown-website/internal/domain"
	"github.com/xandwr/doctown-website/internal/service"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_token"

const currentUserKey = "currentUser"

// Session resolves the session cookie into ambient user context before
// routing. It never rejects a request: an absent or invalid token just
// means no user is attached.
func Session(validator *service.SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
			if user := validator.Validate(c.Request.Context(), token); user != nil {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the resolved user for this request, if any.
func CurrentUser(c *gin.Context) (*domain.SessionUser, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*domain.SessionUser)
	return user, ok
}
