package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSyncSchedule matches the five second refresh the order boards expect.
const DefaultSyncSchedule = "@every 5s"

// Syncer reloads orders from durable storage. Satisfied by *store.Store.
type Syncer interface {
	Sync(ctx context.Context) (int, error)
}

// SyncJob pulls orders written by other instances into the local store on a
// cron schedule.
type SyncJob struct {
	syncer   Syncer
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSyncJob creates a sync job. schedule accepts standard cron expressions
// with an optional seconds field and descriptors such as "@every 5s".
func NewSyncJob(syncer Syncer, schedule string, logger *slog.Logger) *SyncJob {
	if schedule == "" {
		schedule = DefaultSyncSchedule
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &SyncJob{
		syncer:   syncer,
		schedule: schedule,
		timeout:  10 * time.Second,
		cron:     cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "order_sync_job"),
	}
}

// Start schedules the job.
func (j *SyncJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.RunOnce); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule, err)
	}
	j.cron.Start()
	j.logger.Info("Order sync job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single sync.
func (j *SyncJob) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.syncer.Sync(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Order sync failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "Orders synced", "changed", n)
	}
}

// Stop stops scheduling and waits for a running sync to finish.
func (j *SyncJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Order sync job stopped")
}
