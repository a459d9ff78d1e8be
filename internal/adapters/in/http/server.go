package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/core/application/usecases/queries"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
	"grabbit/internal/metrics"
	"grabbit/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderIdempotencyKey makes POST /orders safe to retry.
	HeaderIdempotencyKey = "Idempotency-Key"

	maxIdempotencyKeyLength = 255
)

// CommandHandlers groups the lifecycle operations served over HTTP.
type CommandHandlers struct {
	CreateOrder     commands.CreateOrderCommandHandler
	AcceptOrder     commands.AcceptOrderCommandHandler
	AdvanceStatus   commands.AdvanceStatusCommandHandler
	ConfirmDelivery commands.ConfirmDeliveryCommandHandler
	CancelOrder     commands.CancelOrderCommandHandler
}

// QueryHandlers groups the read operations served over HTTP.
type QueryHandlers struct {
	GetAvailableOrders    queries.GetAvailableOrdersQueryHandler
	GetOrder              queries.GetOrderQueryHandler
	GetBuyerOrders        queries.GetBuyerOrdersQueryHandler
	GetCarrierAssignments queries.GetCarrierAssignmentsQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
// Every handler returns its error to the echo error handler, which picks the
// status code.
type Server struct {
	commands    CommandHandlers
	queries     QueryHandlers
	idempotency ports.IdempotencyStore
	metrics     *metrics.Metrics
	defaultTTL  time.Duration
	logger      *slog.Logger
}

// NewServer creates a new HTTP server. A zero defaultTTL leaves the choice to
// order.DefaultTTL.
func NewServer(
	commandHandlers CommandHandlers,
	queryHandlers QueryHandlers,
	idempotency ports.IdempotencyStore,
	m *metrics.Metrics,
	defaultTTL time.Duration,
	logger *slog.Logger,
) *Server {
	return &Server{
		commands:    commandHandlers,
		queries:     queryHandlers,
		idempotency: idempotency,
		metrics:     m,
		defaultTTL:  defaultTTL,
		logger:      logger.With("component", "HTTPServer"),
	}
}

// CreateOrder handles POST /api/v1/orders.
//
// With an Idempotency-Key header the first request reserves the key for the
// new order id; a replay answers 200 with the order the key already points to.
func (s *Server) CreateOrder(ctx echo.Context) error {
	u, _ := currentUser(ctx)

	var req createOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	key := ctx.Request().Header.Get(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		return errs.NewValueIsOutOfRangeError("idempotency key length", len(key), 1, maxIdempotencyKeyLength)
	}

	items, err := toItems(req.Items)
	if err != nil {
		return err
	}

	if req.TTLSeconds > int(order.MaxTTL/time.Second) {
		return errs.NewValueIsOutOfRangeError("ttl_seconds", req.TTLSeconds, int(order.MinTTL/time.Second), int(order.MaxTTL/time.Second))
	}
	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl == 0 {
		ttl = s.defaultTTL
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, u.ID(), req.StoreName, items, req.DeliveryAddress, ttl)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if key != "" {
		existing, reserved, reserveErr := s.idempotency.Reserve(reqCtx, u.ID(), key, orderID)
		if reserveErr != nil {
			return reserveErr
		}
		if !reserved {
			s.metrics.CreateReplayed()
			return s.respondWithReplay(ctx, existing)
		}
	}

	if err = s.commands.CreateOrder.Handle(reqCtx, cmd); err != nil {
		if key != "" {
			s.release(u.ID(), key, orderID)
		}
		return err
	}
	s.metrics.OrderCreated()

	return s.respondWithOrder(ctx, http.StatusCreated, orderID)
}

// GetAvailableOrders handles GET /api/v1/orders/available.
func (s *Server) GetAvailableOrders(ctx echo.Context) error {
	var req listAvailableRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	query, err := queries.NewGetAvailableOrdersQuery(req.Limit)
	if err != nil {
		return err
	}

	orders, err := s.queries.GetAvailableOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toAvailableOrderResponses(orders))
}

// GetOrder handles GET /api/v1/orders/:id. Only the buyer and the bound
// carrier may read an order.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return err
	}
	return s.respondWithOrder(ctx, http.StatusOK, orderID)
}

// AcceptOrder handles POST /api/v1/orders/:id/accept.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	u, _ := currentUser(ctx)

	orderID, err := orderIDParam(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAcceptOrderCommand(orderID, u.ID())
	if err != nil {
		return err
	}

	resp, err := s.commands.AcceptOrder.Handle(ctx.Request().Context(), cmd)
	s.metrics.AcceptAttempt(resp.Outcome.String())
	if err != nil {
		return err
	}
	s.metrics.Transition(order.Assigned.String())

	return ctx.JSON(http.StatusOK, toAcceptOrderResponse(resp))
}

// AdvanceStatus handles POST /api/v1/orders/:id/status.
func (s *Server) AdvanceStatus(ctx echo.Context) error {
	u, _ := currentUser(ctx)

	orderID, err := orderIDParam(ctx)
	if err != nil {
		return err
	}

	var req advanceStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return err
	}
	if err = ctx.Validate(&req); err != nil {
		return err
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAdvanceStatusCommand(orderID, u.ID(), target)
	if err != nil {
		return err
	}

	status, err := s.commands.AdvanceStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	s.metrics.Transition(status.String())

	return ctx.JSON(http.StatusOK, statusResponse{ID: orderID, Status: status.String()})
}

// ConfirmDelivery handles POST /api/v1/orders/:id/confirm.
func (s *Server) ConfirmDelivery(ctx echo.Context) error {
	u, _ := currentUser(ctx)

	orderID, err := orderIDParam(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewConfirmDeliveryCommand(orderID, u.ID())
	if err != nil {
		return err
	}

	if err = s.commands.ConfirmDelivery.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	s.metrics.Transition(order.Completed.String())

	return ctx.JSON(http.StatusOK, statusResponse{ID: orderID, Status: order.Completed.String()})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	u, _ := currentUser(ctx)

	orderID, err := orderIDParam(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, u.ID())
	if err != nil {
		return err
	}

	if err = s.commands.CancelOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	s.metrics.Transition(order.Cancelled.String())

	return ctx.JSON(http.StatusOK, statusResponse{ID: orderID, Status: order.Cancelled.String()})
}

// GetBuyerOrders handles GET /api/v1/buyer/orders, newest first.
func (s *Server) GetBuyerOrders(ctx echo.Context) error {
	u, _ := currentUser(ctx)

	query, err := queries.NewGetBuyerOrdersQuery(u.ID())
	if err != nil {
		return err
	}

	orders, err := s.queries.GetBuyerOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toOrderResponses(orders))
}

// GetCarrierAssignments handles GET /api/v1/carrier/assignments.
func (s *Server) GetCarrierAssignments(ctx echo.Context) error {
	u, _ := currentUser(ctx)

	query, err := queries.NewGetCarrierAssignmentsQuery(u.ID())
	if err != nil {
		return err
	}

	orders, err := s.queries.GetCarrierAssignments.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toOrderResponses(orders))
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

func (s *Server) respondWithOrder(ctx echo.Context, code int, orderID kernel.UUID) error {
	u, _ := currentUser(ctx)

	query, err := queries.NewGetOrderQuery(orderID, u.ID())
	if err != nil {
		return err
	}

	o, err := s.queries.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(code, toOrderResponse(o))
}

// respondWithReplay answers a repeated create. The first request may still be
// in flight, in which case its order is not readable yet.
func (s *Server) respondWithReplay(ctx echo.Context, orderID kernel.UUID) error {
	err := s.respondWithOrder(ctx, http.StatusOK, orderID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return echo.NewHTTPError(http.StatusConflict, "a request with this "+HeaderIdempotencyKey+" is still in progress")
	}
	return err
}

// release frees the idempotency key after a failed creation. It runs on its
// own context so a cancelled request still clears the key.
func (s *Server) release(buyerID kernel.UUID, key string, orderID kernel.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.idempotency.Release(ctx, buyerID, key, orderID); err != nil {
		s.logger.Warn("failed to release idempotency key",
			"buyer_id", buyerID.String(),
			"order_id", orderID.String(),
			"error", err,
		)
	}
}

func orderIDParam(ctx echo.Context) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	return id, nil
}

func toItems(reqs []itemRequest) ([]order.Item, error) {
	items := make([]order.Item, 0, len(reqs))
	errList := make([]error, 0)
	for _, r := range reqs {
		item, err := order.NewItem(r.Name, r.Quantity, r.UnitPrice)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		items = append(items, item)
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return items, nil
}
