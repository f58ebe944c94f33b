package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/service"
)

// DashboardHandler exposes analytics endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new handler instance.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Dashboard handles GET /dashboard requests.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	stats, err := h.dashboard.Dashboard(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "", "failed to compute dashboard")
	}
	return Success(c, http.StatusOK, "dashboard computed", stats)
}

// States handles GET /states requests.
func (h *DashboardHandler) States(c echo.Context) error {
	states, err := h.dashboard.States(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "", "failed to compute states")
	}
	return Success(c, http.StatusOK, "states computed", states)
}
