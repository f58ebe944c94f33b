package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/notification"
)

// NotificationsHandler sends WhatsApp messages synchronously.
type NotificationsHandler struct {
	sender notification.Sender
}

// NewNotificationsHandler wires the handler. A nil sender answers 503.
func NewNotificationsHandler(sender notification.Sender) *NotificationsHandler {
	return &NotificationsHandler{sender: sender}
}

// SendWhatsApp handles POST /notifications/whatsapp requests.
func (h *NotificationsHandler) SendWhatsApp(c echo.Context) error {
	var req dto.SendWhatsAppRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	msg := notification.NotificationRequest{To: strings.TrimSpace(req.ToPhone), Message: req.Message}
	if err := notification.ValidateRequest(msg); err != nil {
		return Error(c, http.StatusBadRequest, notification.Failure(err).Error)
	}
	if h.sender == nil {
		return Error(c, http.StatusServiceUnavailable, "messaging provider is not configured")
	}

	result := h.sender.Send(c.Request().Context(), msg)
	if !result.Success {
		switch result.Kind {
		case notification.KindValidation:
			return Error(c, http.StatusBadRequest, result.Error)
		case notification.KindConfiguration:
			return Error(c, http.StatusServiceUnavailable, result.Error)
		}
		return ErrorWithData(c, http.StatusBadGateway, result.Error, result)
	}

	return Success(c, http.StatusOK, "message sent", result)
}
