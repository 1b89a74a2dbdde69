/**
 * @description
 * This file defines the scheduled jobs of the reward-service: activating
 * approved campaigns, completing exhausted ones, and the periodic ledger
 * reconciliation sweep. Jobs depend on narrow interfaces so they can be
 * tested with fakes.
 */

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/adreach/reward-service/internal/app"
	"github.com/google/uuid"
)

type campaignLifecycle interface {
	ActivateApprovedCampaigns(ctx context.Context) (*app.LifecycleResult, error)
	CompleteExpiredCampaigns(ctx context.Context) (*app.LifecycleResult, error)
}

type ledgerReconciler interface {
	BackfillScanEarnings(ctx context.Context, campaignID *uuid.UUID, dryRun bool) (*app.ReconcileResult, error)
	CleanupDuplicateEarnings(ctx context.Context, dryRun bool) (*app.ReconcileResult, error)
	RecomputeCampaignTotals(ctx context.Context, campaignID *uuid.UUID) (*app.ReconcileResult, error)
	BackfillCostPerScan(ctx context.Context, dryRun bool) (*app.ReconcileResult, error)
}

// Jobs bundles the scheduled work with its dependencies.
type Jobs struct {
	lifecycle  campaignLifecycle
	reconciler ledgerReconciler
	logger     *slog.Logger
	timeout    time.Duration
}

// NewJobs creates the job set. Both interfaces are satisfied by *app.Service.
func NewJobs(lifecycle campaignLifecycle, reconciler ledgerReconciler, logger *slog.Logger) *Jobs {
	return &Jobs{
		lifecycle:  lifecycle,
		reconciler: reconciler,
		logger:     logger,
		timeout:    5 * time.Minute,
	}
}

// ActivateCampaigns moves approved campaigns into active status.
func (j *Jobs) ActivateCampaigns() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.lifecycle.ActivateApprovedCampaigns(ctx)
	if err != nil {
		j.logger.Error("campaign activation job failed", "error", err)
		return
	}
	j.logger.Info("campaign activation job finished",
		"processed", result.Processed, "updated", result.Updated, "failed", result.Failed)
}

// CompleteCampaigns completes campaigns that exhausted their budget or cap.
func (j *Jobs) CompleteCampaigns() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.lifecycle.CompleteExpiredCampaigns(ctx)
	if err != nil {
		j.logger.Error("campaign completion job failed", "error", err)
		return
	}
	j.logger.Info("campaign completion job finished",
		"processed", result.Processed, "updated", result.Updated, "failed", result.Failed)
}

// ReconcileLedger runs the full repair sweep: stamp missing prices, backfill
// missing earnings, delete duplicate credits, then rebuild campaign totals
// from the cleaned ledger. Order matters; totals run last so they see the
// repaired rows.
func (j *Jobs) ReconcileLedger() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if result, err := j.reconciler.BackfillCostPerScan(ctx, false); err != nil {
		j.logger.Error("cost per scan backfill failed", "error", err)
	} else if result.Processed > 0 {
		j.logger.Info("cost per scan backfill finished", "processed", result.Processed, "repaired", result.Repaired)
	}

	if result, err := j.reconciler.BackfillScanEarnings(ctx, nil, false); err != nil {
		j.logger.Error("earnings backfill failed", "error", err)
	} else if result.Processed > 0 {
		j.logger.Info("earnings backfill finished", "processed", result.Processed, "repaired", result.Repaired, "failed", result.Failed)
	}

	if result, err := j.reconciler.CleanupDuplicateEarnings(ctx, false); err != nil {
		j.logger.Error("duplicate earnings cleanup failed", "error", err)
	} else if result.Processed > 0 {
		j.logger.Info("duplicate earnings cleanup finished", "processed", result.Processed, "deleted", result.Deleted)
	}

	if result, err := j.reconciler.RecomputeCampaignTotals(ctx, nil); err != nil {
		j.logger.Error("campaign totals recompute failed", "error", err)
	} else {
		j.logger.Info("campaign totals recompute finished", "processed", result.Processed, "failed", result.Failed)
	}
}
