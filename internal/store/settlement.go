/**
 * @description
 * This file holds the pure decision logic of scan settlement: whether a
 * locked campaign can afford one more scan, and how far back the fingerprint
 * cooldown reaches. Keeping these out of the SQL path lets the rules be
 * tested without a database; SettleScanAtomic applies them to the row it
 * locked.
 */

package store

import (
	"time"

	"github.com/adreach/reward-service/internal/domain"
)

// settlementGate judges a locked campaign's state for one more scan. A
// completed campaign is a spent budget, not a missing assignment, so it maps
// to ErrBudgetExhausted; only campaigns that never reached a payable state
// map to ErrNoEligibleCampaign.
func settlementGate(status domain.CampaignStatus, costPerScan, credit int64, totalScans, maxScans int) error {
	switch status {
	case domain.CampaignStatusApproved, domain.CampaignStatusActive, domain.CampaignStatusLive:
	case domain.CampaignStatusCompleted:
		return ErrBudgetExhausted
	default:
		return ErrNoEligibleCampaign
	}
	if credit < costPerScan || totalScans >= maxScans {
		return ErrBudgetExhausted
	}
	return nil
}

// duplicateCutoff returns the oldest scanned_at still inside the cooldown
// window for a scan at the given time.
func duplicateCutoff(scannedAt time.Time, window time.Duration) time.Time {
	return scannedAt.Add(-window)
}

// withinCooldown reports whether a previous scan suppresses a new one at
// scannedAt. This mirrors the `scanned_at > cutoff` comparison the duplicate
// query runs.
func withinCooldown(previous, scannedAt time.Time, window time.Duration) bool {
	return previous.After(duplicateCutoff(scannedAt, window))
}
