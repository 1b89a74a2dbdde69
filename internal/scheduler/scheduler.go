/**
 * @description
 * This file wires the scheduled jobs onto a cron runner. Panics inside a job
 * are recovered and logged so one bad run cannot take the scheduler down.
 *
 * @dependencies
 * - github.com/robfig/cron/v3: The cron scheduling library.
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
)

// Schedules holds the cron expressions for each job.
type Schedules struct {
	ActivateCampaigns string
	CompleteCampaigns string
	ReconcileLedger   string
}

// Scheduler owns the cron runner and the registered jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
}

// New creates a scheduler with panic recovery around every job.
func New(jobs *Jobs, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
	))
	return &Scheduler{cron: c, jobs: jobs, logger: logger}
}

// Register adds the jobs on their schedules.
func (s *Scheduler) Register(schedules Schedules) error {
	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"activate-campaigns", schedules.ActivateCampaigns, s.jobs.ActivateCampaigns},
		{"complete-campaigns", schedules.CompleteCampaigns, s.jobs.CompleteCampaigns},
		{"reconcile-ledger", schedules.ReconcileLedger, s.jobs.ReconcileLedger},
	}
	for _, entry := range entries {
		if entry.spec == "" {
			s.logger.Warn("job has no schedule, skipping", "job", entry.name)
			continue
		}
		if _, err := s.cron.AddFunc(entry.spec, entry.fn); err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", entry.name, err)
		}
		s.logger.Info("job scheduled", "job", entry.name, "schedule", entry.spec)
	}
	return nil
}

// Start begins running the scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts scheduling and returns a context that is done once running jobs
// complete.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("scheduler stopping")
	return s.cron.Stop()
}

// NewLogger builds the slog logger used by the scheduler binary.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
