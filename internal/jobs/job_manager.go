// Package jobs runs the cron-scheduled background tasks of the order service.
package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	syncJob *SyncJob
}

// NewJobManager creates a job manager. A nil syncer means no durable storage
// is configured and there is nothing to schedule.
func NewJobManager(syncer Syncer, syncSchedule string, logger *slog.Logger) *JobManager {
	jm := &JobManager{}
	if syncer != nil {
		jm.syncJob = NewSyncJob(syncer, syncSchedule, logger)
	}
	return jm
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if jm.syncJob == nil {
		return nil
	}
	if err := jm.syncJob.Start(); err != nil {
		return fmt.Errorf("failed to start order sync job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.syncJob != nil {
		jm.syncJob.Stop()
	}
}
