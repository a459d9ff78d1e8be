package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "no"), http.StatusUnauthorized},
		{"required", errs.NewValueIsRequiredError("store name"), http.StatusBadRequest},
		{"invalid", errs.NewValueIsInvalidError("order id"), http.StatusBadRequest},
		{"out of range", errs.NewValueIsOutOfRangeError("ttl", 0, 1, 2), http.StatusBadRequest},
		{"joined validation", errors.Join(errs.NewValueIsRequiredError("a"), errs.NewValueIsRequiredError("b")), http.StatusBadRequest},
		{"forbidden", errs.NewForbiddenError("buyer", "x"), http.StatusForbidden},
		{"not found", errs.NewObjectNotFoundError("order", "x"), http.StatusNotFound},
		{"already assigned", fmt.Errorf("%w: order x", order.ErrOrderAlreadyAssigned), http.StatusConflict},
		{"expired", order.ErrOrderExpired, http.StatusConflict},
		{"invalid transition", order.ErrInvalidTransition, http.StatusConflict},
		{"invalid state", order.ErrInvalidState, http.StatusConflict},
		{"storage unavailable", errs.NewStorageUnavailableError("get order"), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := resolveError(tt.err)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestResolveError_HidesInternalDetails(t *testing.T) {
	_, msg := resolveError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", msg)

	_, msg = resolveError(errs.NewStorageUnavailableErrorWithCause("commit", errors.New("dial tcp 10.0.0.1:5432")))
	assert.NotContains(t, msg, "10.0.0.1")
}

func TestRequestValidator(t *testing.T) {
	v := newRequestValidator()

	err := v.Validate(&createOrderRequest{
		StoreName:       "Corner Shop",
		Items:           []itemRequest{{Name: "Milk", Quantity: 0}},
		DeliveryAddress: "12 High Street",
	})

	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Contains(t, he.Message, "items[0].quantity")
	}

	assert.NoError(t, v.Validate(&advanceStatusRequest{Status: "in_progress"}))
}

func TestRequestMiddleware_RendersErrorOnce(t *testing.T) {
	e := echo.New()
	var handled int
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		handled++
		_ = c.JSON(resolveError(err))
	}
	e.Use(requestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	e.Use(requestMetrics(nil))
	e.GET("/fail", func(echo.Context) error {
		return errs.NewObjectNotFoundError("order", "42")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, handled)
}
