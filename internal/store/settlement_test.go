package store

import (
	"errors"
	"testing"
	"time"

	"github.com/adreach/reward-service/internal/domain"
)

func TestSettlementGate(t *testing.T) {
	cases := []struct {
		name       string
		status     domain.CampaignStatus
		credit     int64
		totalScans int
		maxScans   int
		wantErr    error
	}{
		{"live with headroom", domain.CampaignStatusLive, 500, 5, 10, nil},
		{"approved with exactly one scan left", domain.CampaignStatusApproved, 500, 9, 10, nil},
		{"active credit below cost", domain.CampaignStatusActive, 499, 5, 10, ErrBudgetExhausted},
		{"live at scan cap", domain.CampaignStatusLive, 5000, 10, 10, ErrBudgetExhausted},
		{"completed is a spent budget", domain.CampaignStatusCompleted, 0, 10, 10, ErrBudgetExhausted},
		{"completed with leftover credit", domain.CampaignStatusCompleted, 400, 10, 10, ErrBudgetExhausted},
		{"draft never payable", domain.CampaignStatusDraft, 5000, 0, 10, ErrNoEligibleCampaign},
		{"rejected never payable", domain.CampaignStatusRejected, 5000, 0, 10, ErrNoEligibleCampaign},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := settlementGate(tc.status, 500, tc.credit, tc.totalScans, tc.maxScans)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestWithinCooldown(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	if !withinCooldown(now.Add(-23*time.Hour), now, window) {
		t.Fatal("scan 23h ago must be suppressed by a 24h window")
	}
	if withinCooldown(now.Add(-25*time.Hour), now, window) {
		t.Fatal("scan 25h ago is outside a 24h window")
	}
	if withinCooldown(now.Add(-24*time.Hour), now, window) {
		t.Fatal("scan exactly at the cutoff is outside the window")
	}
	if !withinCooldown(now, now, window) {
		t.Fatal("simultaneous scan must be suppressed")
	}
}

func TestDuplicateCutoff(t *testing.T) {
	scannedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cutoff := duplicateCutoff(scannedAt, time.Hour)
	if !cutoff.Equal(scannedAt.Add(-time.Hour)) {
		t.Fatalf("expected cutoff one hour before scan, got %v", cutoff)
	}
}
