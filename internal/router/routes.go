package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/lead-tracker/internal/auth"
	"github.com/octobees/lead-tracker/internal/config"
	"github.com/octobees/lead-tracker/internal/handler"
	middlewarepkg "github.com/octobees/lead-tracker/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Leads       *handler.LeadsHandler
	AdminImport *handler.AdminImportHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/api/health", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/login", handlers.Auth.Login)

	api := e.Group("/api")
	api.GET("/leads", handlers.Leads.List)
	api.GET("/leads/:id", handlers.Leads.Get)
	api.GET("/export", handlers.Leads.Export)
	api.GET("/stats", handlers.Leads.Stats)
	api.GET("/tags", handlers.Leads.Tags)

	writeLimit := middlewarepkg.WriteRateLimiter(cfg.RateLimitWrite)
	api.POST("/leads", handlers.Leads.Create, writeLimit)
	api.PUT("/leads/:id", handlers.Leads.Update, writeLimit)
	api.DELETE("/leads/:id", handlers.Leads.Delete, writeLimit)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.POST("/import-csv", handlers.AdminImport.ImportCSV)
}
