package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	expirySweeperJob *ExpirySweeperJob
	outboxRelayJob   *OutboxRelayJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(expirySweeperJob *ExpirySweeperJob, outboxRelayJob *OutboxRelayJob) *JobManager {
	return &JobManager{
		expirySweeperJob: expirySweeperJob,
		outboxRelayJob:   outboxRelayJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.expirySweeperJob.Start(); err != nil {
		return fmt.Errorf("failed to start expiry sweeper job: %w", err)
	}

	if err := jm.outboxRelayJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.expirySweeperJob.Stop()
		return fmt.Errorf("failed to start outbox relay job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.outboxRelayJob.Stop()
	jm.expirySweeperJob.Stop()
}
