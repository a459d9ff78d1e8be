package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/metrics"

	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout bounds a single job run.
const DefaultRunTimeout = 30 * time.Second

type expireOrdersHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireOrdersCommand) (int, error)
}

// ExpirySweeperJob periodically expires overdue open orders. Reads stay
// correct between runs because every read path applies the effective status.
type ExpirySweeperJob struct {
	handler  expireOrdersHandler
	cmd      commands.ExpireOrdersCommand
	schedule string
	cron     *cron.Cron
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewExpirySweeperJob creates a sweeper that expires up to batchSize orders per run.
func NewExpirySweeperJob(
	handler expireOrdersHandler,
	schedule string,
	batchSize int,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*ExpirySweeperJob, error) {
	cmd, err := commands.NewExpireOrdersCommand(batchSize)
	if err != nil {
		return nil, fmt.Errorf("expiry sweeper: %w", err)
	}

	logger = logger.With("component", "expiry_sweeper_job")
	return &ExpirySweeperJob{
		handler:  handler,
		cmd:      cmd,
		schedule: schedule,
		cron:     newCron(logger),
		metrics:  m,
		logger:   logger,
	}, nil
}

// Start schedules the sweeper.
func (j *ExpirySweeperJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expiry sweeper job started", "schedule", j.schedule)
	return nil
}

// Run performs one sweep. A full batch triggers another pass right away so a
// backlog drains within one tick.
func (j *ExpirySweeperJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, DefaultRunTimeout)
	defer cancel()

	total := 0
	for {
		n, err := j.handler.Handle(ctx, j.cmd)
		total += n
		j.metrics.OrdersExpired(n)
		if err != nil {
			j.logger.ErrorContext(ctx, "Expiry sweep failed", "error", err, "expired", total)
			return
		}
		if n < j.cmd.BatchSize() || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		j.logger.InfoContext(ctx, "Expired overdue orders", "count", total)
	}
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (j *ExpirySweeperJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Expiry sweeper job stopped")
}

func newCron(logger *slog.Logger) *cron.Cron {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	return cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
}
