package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/adapter/backend"
	"github.com/xandwr/doctown-website/internal/http/middleware"
)

// APIHandler forwards authenticated browser calls to the backend API.
// Every route follows the same contract: no session cookie means 401
// with no outbound call; backend 2xx bodies are relayed verbatim;
// backend error statuses are mapped onto user-facing messages.
type APIHandler struct {
	Backend *backend.Client
	Logger  *zap.Logger
}

// NewAPIHandler creates the proxy handler set.
func NewAPIHandler(client *backend.Client, logger *zap.Logger) *APIHandler {
	return &APIHandler{Backend: client, Logger: logger}
}

// ListDocpacks proxies the caller's own docpack listing.
// GET /api/docpacks
func (h *APIHandler) ListDocpacks(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodGet, "/api/v1/docpacks/me", token, nil)
	if err != nil {
		h.fail(c, "fetch docpacks", err, "Failed to fetch docpacks")
		return
	}
	if !resp.OK() {
		c.JSON(resp.Status, gin.H{"error": "Failed to fetch docpacks"})
		return
	}
	relay(c, resp)
}

// CreateDocpack proxies docpack creation. A backend 409 means the user
// already linked this repository.
// POST /api/docpacks
func (h *APIHandler) CreateDocpack(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodPost, "/api/v1/docpacks", token, body)
	if err != nil {
		h.fail(c, "create docpack", err, "Failed to create docpack")
		return
	}
	if !resp.OK() {
		if resp.Status == http.StatusConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "You already have a docpack for this repository"})
			return
		}
		c.JSON(resp.Status, gin.H{"error": "Failed to create docpack"})
		return
	}
	relay(c, resp)
}

// UpdateDocpack proxies a docpack edit with ownership-aware errors.
// PATCH /api/docpacks/:id
func (h *APIHandler) UpdateDocpack(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodPatch, "/api/v1/docpacks/id/"+c.Param("id"), token, body)
	if err != nil {
		h.fail(c, "update docpack", err, "Failed to update docpack")
		return
	}
	if !resp.OK() {
		switch resp.Status {
		case http.StatusNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Docpack not found"})
		case http.StatusForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to update this docpack"})
		default:
			c.JSON(resp.Status, gin.H{"error": "Failed to update docpack"})
		}
		return
	}
	relay(c, resp)
}

// DeleteDocpack proxies docpack deletion.
// DELETE /api/docpacks/:id
func (h *APIHandler) DeleteDocpack(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodDelete, "/api/v1/docpacks/id/"+c.Param("id"), token, nil)
	if err != nil {
		h.fail(c, "delete docpack", err, "Failed to delete docpack")
		return
	}
	if !resp.OK() {
		switch resp.Status {
		case http.StatusNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Docpack not found"})
		case http.StatusForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this docpack"})
		default:
			c.JSON(resp.Status, gin.H{"error": "Failed to delete docpack"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DocpackJob proxies the latest generation job for a docpack. Backend
// errors are relayed with their body text.
// GET /api/docpacks/:id/job
func (h *APIHandler) DocpackJob(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodGet, "/api/v1/docpacks/"+c.Param("id")+"/job", token, nil)
	if err != nil {
		h.fail(c, "fetch docpack job", err, "Failed to fetch job")
		return
	}
	if !resp.OK() {
		c.JSON(resp.Status, gin.H{"error": string(resp.Body)})
		return
	}
	relay(c, resp)
}

// CreateJob proxies generation job creation.
// POST /api/jobs
func (h *APIHandler) CreateJob(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodPost, "/api/v1/jobs", token, body)
	if err != nil {
		h.fail(c, "create job", err, "Failed to create job")
		return
	}
	if !resp.OK() {
		c.JSON(resp.Status, gin.H{"error": string(resp.Body)})
		return
	}
	relay(c, resp)
}

// ListRepositories proxies the caller's GitHub repository listing.
// GET /api/repositories
func (h *APIHandler) ListRepositories(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodGet, "/api/v1/repositories", token, nil)
	if err != nil {
		h.fail(c, "fetch repositories", err, "Failed to fetch repositories from GitHub")
		return
	}
	if !resp.OK() {
		message := strings.TrimSpace(string(resp.Body))
		if message == "" {
			message = "Failed to fetch repositories"
		}
		c.JSON(resp.Status, gin.H{"error": message})
		return
	}
	relay(c, resp)
}

// UpdatePreferences proxies user preference changes.
// PATCH /api/users/preferences
func (h *APIHandler) UpdatePreferences(c *gin.Context) {
	token, ok := h.requireSession(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	resp, err := h.Backend.Do(c.Request.Context(), http.MethodPatch, "/api/v1/users/preferences", token, body)
	if err != nil {
		h.fail(c, "update preferences", err, "Failed to update preferences")
		return
	}
	if !resp.OK() {
		c.JSON(resp.Status, gin.H{"error": "Failed to update preferences"})
		return
	}
	relay(c, resp)
}

// requireSession reads the session cookie, answering 401 and making no
// outbound call when it is absent.
func (h *APIHandler) requireSession(c *gin.Context) (string, bool) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	return token, true
}

func (h *APIHandler) fail(c *gin.Context, op string, err error, message string) {
	h.log().Error("backend proxy failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func (h *APIHandler) log() *zap.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}

// relay passes a 2xx backend body through untouched.
func relay(c *gin.Context, resp *backend.Response) {
	c.Data(http.StatusOK, "application/json", resp.Body)
}

func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
}
