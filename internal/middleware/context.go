package middleware

import "github.com/labstack/echo/v4"

// Context keys used to store authentication metadata.
const (
	ContextKeyOfficerID    = "officer_id"
	ContextKeyOfficerEmail = "officer_email"
	ContextKeyOfficerRole  = "officer_role"
	ContextKeyRequestID    = "request_id"

	// ContextKeyError carries the internal cause of a 5xx response written by a handler.
	ContextKeyError = "handler_error"
)

// OfficerIDFromContext returns the authenticated officer id, or "" for anonymous requests.
func OfficerIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyOfficerID).(string); ok {
		return val
	}
	return ""
}

func reject(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"status": "error", "message": message})
}
