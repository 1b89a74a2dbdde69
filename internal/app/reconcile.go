/**
 * @description
 * This file implements the reconciliation jobs that repair drift between the
 * scans table, the earnings ledger, and the campaign counters. Every job is
 * idempotent and supports a dry run that reports what would change without
 * writing. Jobs continue past individual row failures and report counters so
 * repeated runs converge on a clean ledger.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/adreach/reward-service/internal/store"
	"github.com/google/uuid"
)

const (
	reconcileDefaultLimit = 200
	reconcileMaxLimit     = 1000
)

// ReconcileResult counts the outcome of one reconciliation run.
type ReconcileResult struct {
	DryRun    bool `json:"dry_run"`
	Processed int  `json:"processed"`
	Repaired  int  `json:"repaired"`
	Deleted   int  `json:"deleted,omitempty"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
}

func clampReconcileLimit(limit int) int {
	if limit <= 0 {
		return reconcileDefaultLimit
	}
	if limit > reconcileMaxLimit {
		return reconcileMaxLimit
	}
	return limit
}

// recomputeAffectedTotals rebuilds the counters of every campaign a repair
// touched, so a standalone job run leaves spent_amount and total_scans
// consistent with the ledger it just changed.
func (s *Service) recomputeAffectedTotals(ctx context.Context, operation string, affected map[uuid.UUID]struct{}, result *ReconcileResult) {
	for id := range affected {
		if _, err := s.repo.RecomputeCampaignTotals(ctx, id); err != nil {
			result.Failed++
			log.Printf("level=error component=app operation=%s msg=\"failed to recompute totals after repair\" campaign_id=%s error=%v", operation, id, err)
		}
	}
}

// BackfillScanEarnings creates the missing earning rows for settled scans that
// have none. The scan row's stored cost is authoritative; the split is
// recomputed from it with the same rules the live path uses, including the
// referring agent lookup.
func (s *Service) BackfillScanEarnings(ctx context.Context, campaignID *uuid.UUID, dryRun bool) (*ReconcileResult, error) {
	orphans, err := s.repo.ListScansWithoutEarnings(ctx, campaignID, clampReconcileLimit(0))
	if err != nil {
		return nil, fmt.Errorf("failed to list scans without earnings: %w", err)
	}

	result := &ReconcileResult{DryRun: dryRun}
	affected := make(map[uuid.UUID]struct{})
	for _, orphan := range orphans {
		result.Processed++
		if dryRun {
			continue
		}

		agentID, err := s.repo.GetReferringAgent(ctx, orphan.DistributorID)
		if err != nil {
			result.Failed++
			log.Printf("level=error component=app operation=backfill_earnings scan_id=%s error=%v", orphan.Scan.ID, err)
			continue
		}
		split := ComputeSplit(orphan.CostPerScan, agentID != nil)

		scanEarning := &domain.Earning{
			ScanID:           orphan.Scan.ID,
			CampaignID:       orphan.Scan.CampaignID,
			PayeeID:          orphan.DistributorID,
			Type:             domain.EarningTypeScan,
			Amount:           orphan.CostPerScan,
			CommissionAmount: split.DistributorShare,
			Status:           domain.EarningStatusPending,
		}
		if err := s.repo.InsertEarningIfAbsent(ctx, scanEarning); err != nil {
			if errors.Is(err, store.ErrEarningExists) {
				result.Skipped++
				continue
			}
			result.Failed++
			log.Printf("level=error component=app operation=backfill_earnings scan_id=%s error=%v", orphan.Scan.ID, err)
			continue
		}
		result.Repaired++
		affected[orphan.Scan.CampaignID] = struct{}{}

		if agentID != nil && split.AgentShare > 0 {
			commission := &domain.Earning{
				ScanID:           orphan.Scan.ID,
				CampaignID:       orphan.Scan.CampaignID,
				PayeeID:          *agentID,
				Type:             domain.EarningTypeCommission,
				Amount:           split.AgentShare,
				CommissionAmount: split.AgentShare,
				Status:           domain.EarningStatusPending,
			}
			if err := s.repo.InsertEarningIfAbsent(ctx, commission); err != nil && !errors.Is(err, store.ErrEarningExists) {
				result.Failed++
				log.Printf("level=error component=app operation=backfill_earnings scan_id=%s msg=\"commission insert failed\" error=%v", orphan.Scan.ID, err)
			}
		}
	}

	s.recomputeAffectedTotals(ctx, "backfill_earnings", affected, result)

	log.Printf("level=info component=app operation=backfill_earnings dry_run=%t processed=%d repaired=%d skipped=%d failed=%d",
		dryRun, result.Processed, result.Repaired, result.Skipped, result.Failed)
	return result, nil
}

// CleanupDuplicateEarnings deletes the newer rows in every group of earnings
// that double-credit the same scan, payee and type. The oldest row in each
// group is kept.
func (s *Service) CleanupDuplicateEarnings(ctx context.Context, dryRun bool) (*ReconcileResult, error) {
	groups, err := s.repo.ListDuplicateEarnings(ctx, clampReconcileLimit(0))
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate earnings: %w", err)
	}

	result := &ReconcileResult{DryRun: dryRun}
	affected := make(map[uuid.UUID]struct{})
	for _, group := range groups {
		result.Processed++
		if len(group.IDs) < 2 {
			result.Skipped++
			continue
		}
		extras := group.IDs[1:]
		if dryRun {
			result.Deleted += len(extras)
			continue
		}
		deleted, err := s.repo.DeleteEarnings(ctx, extras)
		if err != nil {
			result.Failed++
			log.Printf("level=error component=app operation=cleanup_duplicates scan_id=%s error=%v", group.ScanID, err)
			continue
		}
		result.Repaired++
		result.Deleted += deleted
		affected[group.CampaignID] = struct{}{}
	}

	s.recomputeAffectedTotals(ctx, "cleanup_duplicates", affected, result)

	log.Printf("level=info component=app operation=cleanup_duplicates dry_run=%t processed=%d deleted=%d failed=%d",
		dryRun, result.Processed, result.Deleted, result.Failed)
	return result, nil
}

// RecomputeCampaignTotals rebuilds spent_amount, campaign_credit and
// total_scans from the earnings ledger. With no explicit campaign it sweeps
// every recomputable campaign.
func (s *Service) RecomputeCampaignTotals(ctx context.Context, campaignID *uuid.UUID) (*ReconcileResult, error) {
	var ids []uuid.UUID
	if campaignID != nil {
		ids = []uuid.UUID{*campaignID}
	} else {
		var err error
		ids, err = s.repo.ListCampaignIDs(ctx, clampReconcileLimit(0))
		if err != nil {
			return nil, fmt.Errorf("failed to list campaigns for totals: %w", err)
		}
	}

	result := &ReconcileResult{}
	for _, id := range ids {
		result.Processed++
		totals, err := s.repo.RecomputeCampaignTotals(ctx, id)
		if err != nil {
			result.Failed++
			log.Printf("level=error component=app operation=recompute_totals campaign_id=%s error=%v", id, err)
			continue
		}
		result.Repaired++
		log.Printf("level=info component=app operation=recompute_totals campaign_id=%s spent=%d credit=%d scans=%d",
			id, totals.SpentAmount, totals.CampaignCredit, totals.TotalScans)
	}

	log.Printf("level=info component=app operation=recompute_totals processed=%d repaired=%d failed=%d",
		result.Processed, result.Repaired, result.Failed)
	return result, nil
}

// BackfillCostPerScan stamps a price on post-approval campaigns that never
// got one, resolving it from the same attributes the approval path uses.
func (s *Service) BackfillCostPerScan(ctx context.Context, dryRun bool) (*ReconcileResult, error) {
	campaigns, err := s.repo.ListCampaignsMissingCostPerScan(ctx, clampReconcileLimit(0))
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns missing cost_per_scan: %w", err)
	}

	result := &ReconcileResult{DryRun: dryRun}
	for _, c := range campaigns {
		result.Processed++
		cost := ResolveCostPerScan(c.Objective, c.HasExplainerVideo, c.CountryCode)
		if dryRun {
			log.Printf("level=info component=app operation=backfill_cost_per_scan dry_run=true campaign_id=%s resolved_cost=%d", c.ID, cost)
			continue
		}
		if _, err := s.repo.FreezeCampaignPricing(ctx, c.ID, cost, MaxScansFor(c.Budget, cost)); err != nil {
			result.Failed++
			log.Printf("level=error component=app operation=backfill_cost_per_scan campaign_id=%s error=%v", c.ID, err)
			continue
		}
		result.Repaired++
	}

	log.Printf("level=info component=app operation=backfill_cost_per_scan dry_run=%t processed=%d repaired=%d failed=%d",
		dryRun, result.Processed, result.Repaired, result.Failed)
	return result, nil
}
