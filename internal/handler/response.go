package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/denhaven/breeder-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// writeServiceError maps service sentinels onto the HTTP taxonomy. Anything
// unrecognized becomes a logged 500 with a generic body so storage details
// never leak to the caller.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "thread not found"))
	case errors.Is(err, service.ErrBlocked):
		return c.JSON(http.StatusForbidden, NewErrorResponse("blocked", "sender is blocked"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrUnsupported):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("unsupported", "operation not supported for this thread"))
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "something went wrong"))
	}
}
