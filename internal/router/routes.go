package router

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/auth"
	"github.com/octobees/lead-intel/internal/config"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/handler"
	"github.com/octobees/lead-intel/internal/metrics"
	middlewarepkg "github.com/octobees/lead-intel/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Officers      *handler.OfficerAdminHandler
	Leads         *handler.LeadsHandler
	LeadImport    *handler.LeadImportHandler
	Sources       *handler.SourcesHandler
	Offices       *handler.OfficesHandler
	Feedback      *handler.FeedbackHandler
	Dashboard     *handler.DashboardHandler
	Notifications *handler.NotificationsHandler
}

const notifyPath = "/notifications/whatsapp"

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", handlers.Health.Healthz)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.POST("/auth/login", handlers.Auth.Login)

	e.GET("/leads", handlers.Leads.List)
	e.GET("/leads/:id", handlers.Leads.Get)
	e.GET("/leads/:id/outreach", handlers.Leads.Outreach)
	e.GET("/sources", handlers.Sources.List)
	e.GET("/offices", handlers.Offices.List)
	e.GET("/dashboard", handlers.Dashboard.Dashboard)
	e.GET("/states", handlers.Dashboard.States)
	e.GET("/feedback", handlers.Feedback.List)
	e.GET("/feedback/export", handlers.Feedback.Export)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/leads", handlers.Leads.Create)
	secured.PATCH("/leads/:id", handlers.Leads.Update)
	secured.POST("/leads/:id/feedback", handlers.Feedback.Submit)
	secured.POST("/sources", handlers.Sources.Create)
	secured.PATCH("/sources/:id", handlers.Sources.Update)
	secured.POST(notifyPath, handlers.Notifications.SendWhatsApp, middlewarepkg.RateLimiter(cfg.RateLimitNotify, notifyPath))

	admin := secured.Group("", middlewarepkg.RequireRole(entity.RoleAdmin))
	admin.POST("/offices", handlers.Offices.Create)
	admin.GET("/admin/officers", handlers.Officers.List)
	admin.POST("/admin/officers", handlers.Officers.Create)
	admin.PATCH("/admin/officers/:id", handlers.Officers.Update)
	admin.DELETE("/admin/officers/:id", handlers.Officers.Delete)
	admin.POST("/admin/leads/import", handlers.LeadImport.UploadCSV)
}
