package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"dirgate/internal/domain"
	"dirgate/internal/metrics"
)

// Janitor runs periodic background sweeps: clearing expired account locks and
// marking long-unseen computers offline. Lazy unlock on access remains the
// correctness mechanism; the sweep just keeps listings honest.
type Janitor struct {
	users     domain.UserRepository
	computers domain.ComputerRepository
	staleAge  time.Duration
	log       *slog.Logger

	cron *cron.Cron
}

// NewJanitor creates a janitor. staleAge is how long an online computer may
// go unseen before the sweep marks it offline.
func NewJanitor(users domain.UserRepository, computers domain.ComputerRepository, staleAge time.Duration, log *slog.Logger) *Janitor {
	return &Janitor{
		users:     users,
		computers: computers,
		staleAge:  staleAge,
		log:       log,
		cron:      cron.New(),
	}
}

// Start schedules the sweep with the given cron expression (e.g. "@every 1m")
// and starts the scheduler.
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// Sweep runs both sweeps once. Exposed for tests and for a manual trigger.
func (j *Janitor) Sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	if n, err := j.users.ClearExpiredLocks(ctx, now); err != nil {
		j.log.Error("janitor: clear expired locks", "error", err)
	} else if n > 0 {
		metrics.JanitorSweeps.WithLabelValues("expired_locks").Inc()
		j.log.Info("janitor: cleared expired locks", "count", n)
	}

	if n, err := j.computers.MarkStaleOffline(ctx, now.Add(-j.staleAge)); err != nil {
		j.log.Error("janitor: mark stale computers offline", "error", err)
	} else if n > 0 {
		metrics.JanitorSweeps.WithLabelValues("stale_computers").Inc()
		j.log.Info("janitor: marked stale computers offline", "count", n)
	}
}
