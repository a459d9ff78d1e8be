package http

import (
	"log/slog"
	"time"

	"grabbit/internal/core/domain/model/user"
	"grabbit/internal/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the echo instance with all routes registered.
// /health and /metrics are served without identity.
func NewRouter(server *Server, gatherer prometheus.Gatherer, m *metrics.Metrics, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(requestMetrics(m))

	e.GET("/health", server.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1", Identity())

	buyer := RequireRole(user.Buyer)
	carrier := RequireRole(user.Carrier)

	api.POST("/orders", server.CreateOrder, buyer)
	api.GET("/orders/available", server.GetAvailableOrders, carrier)
	api.GET("/orders/:id", server.GetOrder)
	api.POST("/orders/:id/accept", server.AcceptOrder, carrier)
	api.POST("/orders/:id/status", server.AdvanceStatus, carrier)
	api.POST("/orders/:id/confirm", server.ConfirmDelivery, buyer)
	api.POST("/orders/:id/cancel", server.CancelOrder, buyer)

	api.GET("/buyer/orders", server.GetBuyerOrders, buyer)
	api.GET("/carrier/assignments", server.GetCarrierAssignments, carrier)

	return e
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "HTTP")

	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= 500 {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// requestMetrics records every request by its route template. The error is
// rendered here so the recorded status matches the response, and is not
// passed on.
func requestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			m.HTTPRequest(c.Request().Method, c.Path(), c.Response().Status, time.Since(start))
			return nil
		}
	}
}
