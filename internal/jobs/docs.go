// Package jobs provides scheduled background tasks for the order engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations.
//
// # Available Jobs
//
// 1. ExpirySweeperJob - transitions overdue open orders to expired in batches
// 2. OutboxRelayJob - publishes pending outbox messages to the broker
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(sweeper, relay)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are six-field cron expressions (seconds first), for example
// "*/5 * * * * *". A run that is still in progress when the next tick fires
// causes that tick to be skipped.
//
// # Error Handling
//
// Failed runs are logged and retried on the next tick. Failed job starts stop
// any already running jobs.
package jobs
