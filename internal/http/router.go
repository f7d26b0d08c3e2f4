package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/http/handler"
	"github.com/xandwr/doctown-website/internal/http/middleware"
	"github.com/xandwr/doctown-website/internal/service"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(
	cfg config.Config,
	authHandler *handler.AuthHandler,
	apiHandler *handler.APIHandler,
	pageHandler *handler.PageHandler,
	validator *service.SessionValidator,
	rateLimiter *middleware.RateLimiter,
	metrics *middleware.Metrics,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(metrics.Handler())
	r.Use(middleware.Session(validator))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.GET("/login", authHandler.Login)
		auth.GET("/callback", authHandler.Callback)
		auth.GET("/logout/confirm", authHandler.LogoutConfirm)
	}

	api := r.Group("/api")
	{
		api.GET("/docpacks", apiHandler.ListDocpacks)
		api.POST("/docpacks", apiHandler.CreateDocpack)
		api.PATCH("/docpacks/:id", apiHandler.UpdateDocpack)
		api.DELETE("/docpacks/:id", apiHandler.DeleteDocpack)
		api.GET("/docpacks/:id/job", apiHandler.DocpackJob)
		api.POST("/jobs", apiHandler.CreateJob)
		api.GET("/repositories", apiHandler.ListRepositories)
		api.PATCH("/users/preferences", apiHandler.UpdatePreferences)
	}

	pages := r.Group("/pages")
	{
		pages.GET("/commons", pageHandler.Commons)
		pages.GET("/docpacks/:id", pageHandler.DocpackDetail)
	}

	return r
}
