package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/adapter/backend"
	"github.com/xandwr/doctown-website/internal/domain"
	"github.com/xandwr/doctown-website/internal/http/middleware"
)

// PageHandler serves the data loads pages need before rendering.
type PageHandler struct {
	Backend *backend.Client
	Logger  *zap.Logger
}

// NewPageHandler creates the page-data handler set.
func NewPageHandler(client *backend.Client, logger *zap.Logger) *PageHandler {
	return &PageHandler{Backend: client, Logger: logger}
}

// Commons loads the public docpack listing. The page renders even when
// the backend is down: failures degrade to an empty listing plus a soft
// error flag for the view.
// GET /pages/commons
func (h *PageHandler) Commons(c *gin.Context) {
	var user *domain.SessionUser
	if u, ok := middleware.CurrentUser(c); ok {
		user = u
	}

	listing, err := h.Backend.PublicDocpacks(c.Request.Context(), 50)
	if err != nil {
		h.log().Error("commons listing failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"docpacks": []domain.Docpack{},
			"total":    0,
			"error":    "Failed to load docpacks",
			"user":     user,
		})
		return
	}

	docpacks := listing.Docpacks
	if docpacks == nil {
		docpacks = []domain.Docpack{}
	}
	c.JSON(http.StatusOK, gin.H{
		"docpacks": docpacks,
		"total":    listing.Total,
		"user":     user,
	})
}

// DocpackDetail loads one docpack for its page, mapping backend 404 and
// 403 onto page-level statuses.
// GET /pages/docpacks/:id
func (h *PageHandler) DocpackDetail(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	docpack, err := h.Backend.DocpackByID(c.Request.Context(), token, c.Param("id"))
	if err != nil {
		switch backend.StatusOf(err) {
		case http.StatusNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Docpack not found"})
		case http.StatusForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to view this docpack"})
		default:
			h.log().Error("docpack detail failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load docpack"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"docpack": docpack})
}

func (h *PageHandler) log() *zap.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}
