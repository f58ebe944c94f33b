package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/service"
)

// FeedbackHandler exposes the feedback loop endpoints.
type FeedbackHandler struct {
	feedback *service.FeedbackService
	now      func() time.Time
}

// NewFeedbackHandler creates a new handler instance.
func NewFeedbackHandler(feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, now: time.Now}
}

// Submit handles POST /leads/:id/feedback requests.
func (h *FeedbackHandler) Submit(c echo.Context) error {
	var req dto.SubmitFeedbackRequest
	if msg := bindRequest(c, &req); msg != "" {
		return Error(c, http.StatusBadRequest, msg)
	}

	record, err := h.feedback.Submit(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "lead not found", "failed to store feedback")
	}
	return Success(c, http.StatusCreated, "feedback recorded", record)
}

// List handles GET /feedback requests.
func (h *FeedbackHandler) List(c echo.Context) error {
	list, err := h.feedback.List(c.Request().Context(), c.QueryParam("action"))
	if err != nil {
		return serviceError(c, err, "", "failed to list feedback")
	}
	return Success(c, http.StatusOK, "feedback retrieved", list)
}

// Export handles GET /feedback/export requests with a CSV attachment.
func (h *FeedbackHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if _, err := h.feedback.ExportCSV(c.Request().Context(), &buf, c.QueryParam("action")); err != nil {
		return serviceError(c, err, "", "failed to export feedback")
	}

	filename := fmt.Sprintf("feedback-export-%s.csv", h.now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
