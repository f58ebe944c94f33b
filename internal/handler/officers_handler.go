package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/service"
)

// OfficerAdminHandler exposes administrative officer management endpoints.
type OfficerAdminHandler struct {
	officers *service.OfficerService
}

// NewOfficerAdminHandler constructs a handler instance.
func NewOfficerAdminHandler(officers *service.OfficerService) *OfficerAdminHandler {
	return &OfficerAdminHandler{officers: officers}
}

// List returns all officers.
func (h *OfficerAdminHandler) List(c echo.Context) error {
	records, err := h.officers.ListOfficers(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "", "failed to list officers")
	}
	return Success(c, http.StatusOK, "officers retrieved", records)
}

// Create provisions a new officer.
func (h *OfficerAdminHandler) Create(c echo.Context) error {
	var req dto.CreateOfficerRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	officer, err := h.officers.CreateOfficer(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "", "failed to create officer")
	}
	return Success(c, http.StatusCreated, "officer created", officer)
}

// Update modifies an existing officer.
func (h *OfficerAdminHandler) Update(c echo.Context) error {
	var req dto.UpdateOfficerRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	officer, err := h.officers.UpdateOfficer(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "officer not found", "failed to update officer")
	}
	return Success(c, http.StatusOK, "officer updated", officer)
}

// Delete removes an officer.
func (h *OfficerAdminHandler) Delete(c echo.Context) error {
	if err := h.officers.DeleteOfficer(c.Request().Context(), c.Param("id")); err != nil {
		return serviceError(c, err, "officer not found", "failed to delete officer")
	}
	return Success(c, http.StatusOK, "officer deleted", nil)
}
