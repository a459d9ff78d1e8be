package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler maps engine errors onto status codes and renders them
// as errorResponse. Unexpected errors are logged and reported as 500 without
// their details.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "HTTPErrorHandler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err)
		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", code,
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Code: code, Message: msg})
	}
}

func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, order.ErrOrderAlreadyAssigned),
		errors.Is(err, order.ErrOrderExpired),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidState):
		return http.StatusConflict, err.Error()
	case errors.Is(err, errs.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage is unavailable, retry later"
	}

	return http.StatusInternalServerError, "internal server error"
}
