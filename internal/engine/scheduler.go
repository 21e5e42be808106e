package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/empire-watcher/internal/metrics"
)

// Scheduler runs snapshot cycles on a fixed interval.
type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger

	snapshotEntry cron.EntryID
}

// NewScheduler creates a new Scheduler that runs engine snapshots on a
// schedule. Every snapshot runs under ctx, so cancelling it aborts a cycle
// in flight.
func NewScheduler(
	ctx context.Context,
	eng *Engine,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		ctx:    ctx,
		cron:   c,
		engine: eng,
		log:    log,
	}

	id, err := c.AddFunc("@every "+interval.String(), s.runSnapshot)
	if err != nil {
		return nil, err
	}
	s.snapshotEntry = id

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
	s.SyncNextRunTimestamp()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamp publishes the next snapshot time as a gauge.
func (s *Scheduler) SyncNextRunTimestamp() {
	entry := s.cron.Entry(s.snapshotEntry)
	if entry.Next.IsZero() {
		return
	}
	metrics.SchedulerNextSnapshotTimestamp.Set(float64(entry.Next.Unix()))
}

func (s *Scheduler) runSnapshot() {
	defer s.SyncNextRunTimestamp()

	s.log.Debug("scheduled snapshot starting")
	if _, err := s.engine.RunSnapshot(s.ctx); err != nil {
		s.log.Error("scheduled snapshot failed", "error", err)
	}
}
