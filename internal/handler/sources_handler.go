package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/service"
)

// SourcesHandler exposes data source endpoints.
type SourcesHandler struct {
	sources *service.SourcesService
}

// NewSourcesHandler creates a new handler instance.
func NewSourcesHandler(sources *service.SourcesService) *SourcesHandler {
	return &SourcesHandler{sources: sources}
}

// List handles GET /sources requests.
func (h *SourcesHandler) List(c echo.Context) error {
	filter := dto.ListSourcesFilter{
		Q:      strings.TrimSpace(c.QueryParam("q")),
		Type:   strings.TrimSpace(c.QueryParam("type")),
		Status: strings.TrimSpace(c.QueryParam("status")),
		Limit:  parseIntDefault(c.QueryParam("limit"), 0),
		Skip:   parseIntDefault(c.QueryParam("skip"), 0),
	}

	page, err := h.sources.List(c.Request().Context(), filter)
	if err != nil {
		return serviceError(c, err, "", "failed to list sources")
	}
	return Success(c, http.StatusOK, "sources retrieved", page)
}

// Create handles POST /sources requests.
func (h *SourcesHandler) Create(c echo.Context) error {
	var req dto.CreateSourceRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	source, err := h.sources.Create(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "", "failed to create source")
	}
	return Success(c, http.StatusCreated, "source created", source)
}

// Update handles PATCH /sources/:id requests.
func (h *SourcesHandler) Update(c echo.Context) error {
	var req dto.UpdateSourceRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	source, err := h.sources.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "source not found", "failed to update source")
	}
	return Success(c, http.StatusOK, "source updated", source)
}
