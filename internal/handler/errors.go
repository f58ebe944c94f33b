package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-intel/internal/middleware"
	"github.com/octobees/lead-intel/internal/repository"
	"github.com/octobees/lead-intel/internal/service"
)

// serviceError maps domain errors to HTTP responses. Anything unrecognised is a 500
// carrying fallback; the cause is kept on the context for the request logger.
func serviceError(c echo.Context, err error, notFound, fallback string) error {
	var verr service.ValidationError
	switch {
	case errors.As(err, &verr):
		return Error(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, repository.ErrItemNotFound), errors.Is(err, repository.ErrOfficerNotFound):
		return Error(c, http.StatusNotFound, notFound)
	case errors.Is(err, repository.ErrItemExists):
		return Error(c, http.StatusConflict, "item already exists")
	case errors.Is(err, repository.ErrEmailDuplicate):
		return Error(c, http.StatusConflict, "email already exists")
	default:
		c.Set(middleware.ContextKeyError, err)
		return Error(c, http.StatusInternalServerError, fallback)
	}
}
