package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/service"
)

// LeadImportHandler handles CSV ingestion of leads for administrators.
type LeadImportHandler struct {
	leads *service.LeadsService
}

// NewLeadImportHandler wires a handler backed by the leads service.
func NewLeadImportHandler(leads *service.LeadsService) *LeadImportHandler {
	return &LeadImportHandler{leads: leads}
}

// UploadCSV handles POST /admin/leads/import requests.
func (h *LeadImportHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.leads.ImportCSV(c.Request().Context(), file)
	if err != nil {
		var validationErr service.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return serviceError(c, err, "", "failed to process csv")
	}

	return Success(c, http.StatusOK, "leads CSV processed", summary)
}
