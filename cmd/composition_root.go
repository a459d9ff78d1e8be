package cmd

import (
	"context"
	"fmt"
	"log/slog"

	httpadapter "grabbit/internal/adapters/in/http"
	"grabbit/internal/adapters/out/kafka"
	"grabbit/internal/adapters/out/memory"
	"grabbit/internal/adapters/out/postgres"
	"grabbit/internal/adapters/out/redis"
	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/core/application/usecases/queries"
	"grabbit/internal/core/ports"
	"grabbit/internal/jobs"
	"grabbit/internal/metrics"
	"grabbit/internal/pkg/clock"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type CompositionRoot struct {
	config      Config
	logger      *slog.Logger
	clock       clock.Clock
	uowFactory  ports.UnitOfWorkFactory
	reader      ports.OrderReader
	publisher   ports.EventPublisher
	idempotency ports.IdempotencyStore
	registry    *prometheus.Registry
	metrics     *metrics.Metrics

	closers []func() error
}

// NewCompositionRoot connects the configured storage, broker and cache.
// Call Close when the application stops.
func NewCompositionRoot(ctx context.Context, config Config, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &CompositionRoot{
		config:   config,
		logger:   logger,
		clock:    clock.RealClock{},
		registry: registry,
		metrics:  metrics.New(registry),
	}

	if err := c.initStorage(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.initIdempotency(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.initPublisher()

	return c, nil
}

func (c *CompositionRoot) initStorage() error {
	switch c.config.StorageDriver {
	case StorageDriverMemory:
		store := memory.NewStore(c.config.StoreTimeout)
		c.uowFactory = memory.NewUnitOfWorkFactory(store)
		c.reader = store
		c.logger.Warn("using in-process storage, state is lost on restart")
		return nil
	case StorageDriverPostgres:
		db := c.config.DB
		gormDB, err := postgres.Open(postgres.ConnectionString(db.Host, db.Port, db.User, db.Password, db.Name, db.SslMode))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return fmt.Errorf("database handle: %w", err)
		}
		c.closers = append(c.closers, sqlDB.Close)

		if err = postgres.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, c.config.StoreTimeout)
		c.reader = postgres.NewOrderReader(gormDB)
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", c.config.StorageDriver)
	}
}

func (c *CompositionRoot) initIdempotency(ctx context.Context) error {
	if c.config.Redis.Addr == "" {
		c.idempotency = redis.NopIdempotencyStore{}
		return nil
	}

	client, err := redis.Connect(ctx, redis.Config{Addr: c.config.Redis.Addr, DB: c.config.Redis.DB})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	c.closers = append(c.closers, client.Close)

	c.idempotency = redis.NewIdempotencyStore(client, c.config.Redis.IdempotencyTTL)
	return nil
}

func (c *CompositionRoot) initPublisher() {
	if len(c.config.Kafka.Brokers) == 0 {
		c.publisher = kafka.NewLogPublisher(c.logger)
		return
	}

	publisher := kafka.NewPublisher(c.config.Kafka.Brokers, c.config.Kafka.OrderEventsTopic)
	c.closers = append(c.closers, publisher.Close)
	c.publisher = publisher
}

// Close releases connections in reverse order of acquisition.
func (c *CompositionRoot) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.uoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateAdvanceStatusCommandHandler() commands.AdvanceStatusCommandHandler {
	return commands.NewAdvanceStatusCommandHandler(c.uoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() commands.ConfirmDeliveryCommandHandler {
	return commands.NewConfirmDeliveryCommandHandler(c.uoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateExpireOrdersCommandHandler() commands.ExpireOrdersCommandHandler {
	return commands.NewExpireOrdersCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreatePublishOutboxCommandHandler() commands.PublishOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPublishOutboxCommandHandler(f, c.publisher, c.clock)
}

func (c *CompositionRoot) CreateGetAvailableOrdersQueryHandler() queries.GetAvailableOrdersQueryHandler {
	return queries.NewGetAvailableOrdersQueryHandler(c.reader, c.clock)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.reader, c.clock)
}

func (c *CompositionRoot) CreateGetBuyerOrdersQueryHandler() queries.GetBuyerOrdersQueryHandler {
	return queries.NewGetBuyerOrdersQueryHandler(c.reader, c.clock)
}

func (c *CompositionRoot) CreateGetCarrierAssignmentsQueryHandler() queries.GetCarrierAssignmentsQueryHandler {
	return queries.NewGetCarrierAssignmentsQueryHandler(c.reader, c.clock)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(
		httpadapter.CommandHandlers{
			CreateOrder:     c.CreateCreateOrderCommandHandler(),
			AcceptOrder:     c.CreateAcceptOrderCommandHandler(),
			AdvanceStatus:   c.CreateAdvanceStatusCommandHandler(),
			ConfirmDelivery: c.CreateConfirmDeliveryCommandHandler(),
			CancelOrder:     c.CreateCancelOrderCommandHandler(),
		},
		httpadapter.QueryHandlers{
			GetAvailableOrders:    c.CreateGetAvailableOrdersQueryHandler(),
			GetOrder:              c.CreateGetOrderQueryHandler(),
			GetBuyerOrders:        c.CreateGetBuyerOrdersQueryHandler(),
			GetCarrierAssignments: c.CreateGetCarrierAssignmentsQueryHandler(),
		},
		c.idempotency,
		c.metrics,
		c.config.Orders.DefaultTTL,
		c.logger,
	)
}

func (c *CompositionRoot) CreateRouter() *echo.Echo {
	return httpadapter.NewRouter(c.CreateHTTPServer(), c.registry, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	sweeper, err := jobs.NewExpirySweeperJob(
		c.CreateExpireOrdersCommandHandler(),
		c.config.Jobs.ExpirySweepSchedule,
		c.config.Jobs.ExpirySweepBatch,
		c.metrics,
		c.logger,
	)
	if err != nil {
		return nil, err
	}

	relay, err := jobs.NewOutboxRelayJob(
		c.CreatePublishOutboxCommandHandler(),
		c.config.Jobs.OutboxRelaySchedule,
		c.config.Jobs.OutboxRelayBatch,
		c.metrics,
		c.logger,
	)
	if err != nil {
		return nil, err
	}

	return jobs.NewJobManager(sweeper, relay), nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
