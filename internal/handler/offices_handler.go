package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/service"
)

// OfficesHandler exposes regional office endpoints.
type OfficesHandler struct {
	offices *service.OfficesService
}

// NewOfficesHandler creates a new handler instance.
func NewOfficesHandler(offices *service.OfficesService) *OfficesHandler {
	return &OfficesHandler{offices: offices}
}

type officePage struct {
	Items    []entity.RegionalOffice `json:"items"`
	HasNext  bool                    `json:"hasNext"`
	NextSkip *int                    `json:"nextSkip,omitempty"`
}

// List handles GET /offices requests.
func (h *OfficesHandler) List(c echo.Context) error {
	offices, info, err := h.offices.List(c.Request().Context(),
		parseIntDefault(c.QueryParam("limit"), 0),
		parseIntDefault(c.QueryParam("skip"), 0),
	)
	if err != nil {
		return serviceError(c, err, "", "failed to list offices")
	}
	return Success(c, http.StatusOK, "offices retrieved", officePage{Items: offices, HasNext: info.HasNext, NextSkip: info.NextSkip})
}

// Create handles POST /offices requests.
func (h *OfficesHandler) Create(c echo.Context) error {
	var req dto.CreateOfficeRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	office, err := h.offices.Create(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "", "failed to create office")
	}
	return Success(c, http.StatusCreated, "office created", office)
}
