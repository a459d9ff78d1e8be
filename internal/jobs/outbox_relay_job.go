package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/metrics"

	"github.com/robfig/cron/v3"
)

type publishOutboxHandler interface {
	Handle(ctx context.Context, cmd commands.PublishOutboxCommand) (int, error)
}

// OutboxRelayJob periodically publishes pending outbox messages.
type OutboxRelayJob struct {
	handler  publishOutboxHandler
	cmd      commands.PublishOutboxCommand
	schedule string
	cron     *cron.Cron
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewOutboxRelayJob creates a relay that publishes up to batchSize messages per pass.
func NewOutboxRelayJob(
	handler publishOutboxHandler,
	schedule string,
	batchSize int,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*OutboxRelayJob, error) {
	cmd, err := commands.NewPublishOutboxCommand(batchSize)
	if err != nil {
		return nil, fmt.Errorf("outbox relay: %w", err)
	}

	logger = logger.With("component", "outbox_relay_job")
	return &OutboxRelayJob{
		handler:  handler,
		cmd:      cmd,
		schedule: schedule,
		cron:     newCron(logger),
		metrics:  m,
		logger:   logger,
	}, nil
}

// Start schedules the relay.
func (j *OutboxRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "schedule", j.schedule)
	return nil
}

// Run relays batches until the outbox is drained or a publish fails.
func (j *OutboxRelayJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, DefaultRunTimeout)
	defer cancel()

	for {
		n, err := j.handler.Handle(ctx, j.cmd)
		j.metrics.OutboxPublished(n)
		if err != nil {
			j.logger.ErrorContext(ctx, "Outbox relay failed", "error", err)
			return
		}
		if n < j.cmd.BatchSize() || ctx.Err() != nil {
			return
		}
	}
}

// Stop stops the relay and waits for a running pass to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
