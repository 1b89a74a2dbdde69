/**
 * @description
 * This file defines the Repository interface, the contract for all data
 * persistence in the reward-service. The service layer depends on this
 * interface rather than a concrete implementation, which keeps settlement and
 * reconciliation logic testable with in-memory stubs.
 *
 * @dependencies
 * - github.com/google/uuid: For user, campaign, scan and earning identifiers.
 */

package store

import (
	"context"
	"time"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/google/uuid"
)

// SettleScanParams carries everything the atomic settlement transaction needs.
// The split is computed by the caller from the campaign's frozen cost_per_scan
// before the row lock is taken.
type SettleScanParams struct {
	CampaignID       uuid.UUID
	DistributorID    uuid.UUID
	AgentID          *uuid.UUID
	CostPerScan      int64
	DistributorShare int64
	AgentShare       int64
	Fingerprint      string
	IPAddress        string
	UserAgent        string
	ScannedAt        time.Time
	DuplicateWindow  time.Duration
}

// SettleScanResult reports what the settlement transaction persisted.
type SettleScanResult struct {
	ScanID            uuid.UUID
	RemainingCredit   int64
	TotalScans        int
	CampaignCompleted bool
}

// ScanWithoutEarning pairs a settled scan with its campaign's pricing so a
// backfill job can reconstruct the missing earning rows.
type ScanWithoutEarning struct {
	Scan          domain.Scan
	CostPerScan   int64
	DistributorID uuid.UUID
}

// DuplicateEarningGroup identifies earning rows that double-credit the same
// scan, payee, and type. IDs are ordered oldest first; the first row is the
// keeper.
type DuplicateEarningGroup struct {
	ScanID     uuid.UUID
	CampaignID uuid.UUID
	PayeeID    uuid.UUID
	Type       domain.EarningType
	IDs        []uuid.UUID
}

// Repository defines the interface for data persistence operations.
type Repository interface {
	// GetDistributor returns the user when it exists, is active, and carries
	// the distributor role; otherwise ErrDistributorNotFound.
	GetDistributor(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetCampaignByID fetches a campaign or ErrCampaignNotFound.
	GetCampaignByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)

	// GetEligibleCampaign resolves the earliest-created campaign assigned to
	// the distributor in a scan-eligible status with budget and scan-count
	// headroom. Returns ErrBudgetExhausted when assignments exist but all are
	// spent, ErrNoEligibleCampaign when there are none.
	GetEligibleCampaign(ctx context.Context, distributorID uuid.UUID) (*domain.Campaign, error)

	// GetCampaignForDistributor fetches a specific campaign and verifies it is
	// assigned to the distributor, or ErrCampaignNotFound.
	GetCampaignForDistributor(ctx context.Context, campaignID, distributorID uuid.UUID) (*domain.Campaign, error)

	// GetReferringAgent resolves the agent behind the earliest
	// agent-to-distributor referral edge, or nil when the distributor was not
	// referred.
	GetReferringAgent(ctx context.Context, distributorID uuid.UUID) (*uuid.UUID, error)

	// SettleScanAtomic performs the whole scan settlement in one transaction:
	// row-lock the campaign, re-validate status, credit and scan headroom,
	// reject fingerprint repeats inside the cooldown window, insert the scan
	// and its earning rows, advance the counters, and complete the campaign
	// when the budget is exhausted. Returns ErrBudgetExhausted or
	// ErrDuplicateScan on business rejection.
	SettleScanAtomic(ctx context.Context, params SettleScanParams) (*SettleScanResult, error)

	// UpdateCampaignStatus applies a lifecycle transition after verifying it
	// against the state machine, or ErrInvalidStatusTransition.
	UpdateCampaignStatus(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (*domain.Campaign, error)

	// FreezeCampaignPricing stamps an approved campaign's cost_per_scan,
	// derived max_scans and initial credit. Called exactly once at approval.
	FreezeCampaignPricing(ctx context.Context, id uuid.UUID, costPerScan int64, maxScans int) (*domain.Campaign, error)

	// ListApprovedCampaigns returns campaigns sitting in approved status.
	ListApprovedCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error)

	// ListExhaustedOpenCampaigns returns scan-eligible campaigns whose credit
	// or scan headroom has run out and should be completed.
	ListExhaustedOpenCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error)

	// ListScansWithoutEarnings finds settled scans that have no scan-type
	// earning row, optionally scoped to one campaign.
	ListScansWithoutEarnings(ctx context.Context, campaignID *uuid.UUID, limit int) ([]ScanWithoutEarning, error)

	// InsertEarningIfAbsent inserts an earning row unless one already exists
	// for the same scan, payee and type, in which case ErrEarningExists.
	InsertEarningIfAbsent(ctx context.Context, earning *domain.Earning) error

	// ListDuplicateEarnings finds groups of earning rows that double-credit
	// the same scan, payee and type.
	ListDuplicateEarnings(ctx context.Context, limit int) ([]DuplicateEarningGroup, error)

	// DeleteEarnings removes earning rows by id. Used only by the duplicate
	// cleanup job after the keeper row has been chosen.
	DeleteEarnings(ctx context.Context, ids []uuid.UUID) (int, error)

	// RecomputeCampaignTotals rebuilds spent_amount, campaign_credit and
	// total_scans from the earnings ledger under a row lock and returns the
	// corrected totals.
	RecomputeCampaignTotals(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignTotals, error)

	// ListCampaignsMissingCostPerScan returns post-approval campaigns whose
	// cost_per_scan was never stamped.
	ListCampaignsMissingCostPerScan(ctx context.Context, limit int) ([]domain.Campaign, error)

	// ListCampaignIDs returns ids of all campaigns in a recomputable state,
	// used by the totals job when no explicit campaign is given.
	ListCampaignIDs(ctx context.Context, limit int) ([]uuid.UUID, error)

	// GetCampaignSummary returns the campaign next to its ledger-derived
	// totals for reporting.
	GetCampaignSummary(ctx context.Context, id uuid.UUID) (*domain.CampaignSummary, error)

	// GrantVentureShares appends a venture share grant.
	GrantVentureShares(ctx context.Context, grant *domain.VentureShare) error

	// GetVentureShareBalance sums a user's venture share grants.
	GetVentureShareBalance(ctx context.Context, userID uuid.UUID) (*domain.VentureShareBalance, error)
}
