package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/middleware"
	"github.com/octobees/lead-intel/internal/service"
)

// LeadsHandler exposes lead endpoints.
type LeadsHandler struct {
	leads *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(leads *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{leads: leads}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	filter := dto.ListLeadsFilter{
		Q:      strings.TrimSpace(c.QueryParam("q")),
		Status: strings.TrimSpace(c.QueryParam("status")),
		Sort:   strings.TrimSpace(c.QueryParam("sort")),
		Limit:  parseIntDefault(c.QueryParam("limit"), 0),
		Skip:   parseIntDefault(c.QueryParam("skip"), 0),
	}

	page, err := h.leads.List(c.Request().Context(), filter)
	if err != nil {
		return serviceError(c, err, "", "failed to list leads")
	}
	return Success(c, http.StatusOK, "leads retrieved", page)
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	lead, err := h.leads.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err, "lead not found", "failed to load lead")
	}
	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// Create handles POST /leads requests. The lead alert is dispatched in the
// background and never changes the response.
func (h *LeadsHandler) Create(c echo.Context) error {
	var req dto.CreateLeadRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	notify := service.NotifyOptions{
		Disabled:  req.Notify != nil && !*req.Notify,
		Phone:     req.NotifyPhone,
		OfficerID: middleware.OfficerIDFromContext(c),
	}

	lead, err := h.leads.Create(c.Request().Context(), req, notify)
	if err != nil {
		return serviceError(c, err, "", "failed to create lead")
	}
	return Success(c, http.StatusCreated, "lead created", lead)
}

// Update handles PATCH /leads/:id requests.
func (h *LeadsHandler) Update(c echo.Context) error {
	var req dto.UpdateLeadRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	lead, err := h.leads.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "lead not found", "failed to update lead")
	}
	return Success(c, http.StatusOK, "lead updated", lead)
}

// Outreach handles GET /leads/:id/outreach requests.
func (h *LeadsHandler) Outreach(c echo.Context) error {
	resp, err := h.leads.Outreach(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err, "lead not found", "failed to build outreach message")
	}
	return Success(c, http.StatusOK, "outreach message ready", resp)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
