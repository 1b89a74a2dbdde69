/**
 * @description
 * This file defines the campaign model for the reward-service. A campaign is a
 * sponsor-funded distribution drive: a fixed budget is converted into a number
 * of payable QR scans at a per-scan price that is resolved once at approval
 * time and never changes afterwards.
 *
 * @notes
 * - Amounts are stored as `int64` in the smallest currency unit (cents), which
 *   avoids floating-point inaccuracies with financial data.
 * - `SpentAmount` and `CampaignCredit` are maintained by the settlement path
 *   and repaired by the reconciliation jobs; the earnings ledger is the source
 *   of truth for both.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus enumerates the campaign lifecycle states.
type CampaignStatus string

const (
	CampaignStatusDraft       CampaignStatus = "draft"
	CampaignStatusSubmitted   CampaignStatus = "submitted"
	CampaignStatusUnderReview CampaignStatus = "under_review"
	CampaignStatusApproved    CampaignStatus = "approved"
	CampaignStatusActive      CampaignStatus = "active"
	CampaignStatusLive        CampaignStatus = "live"
	CampaignStatusCompleted   CampaignStatus = "completed"
	CampaignStatusRejected    CampaignStatus = "rejected"
)

// CampaignObjective enumerates the pricing-relevant campaign objectives.
type CampaignObjective string

const (
	ObjectiveBasePromotion CampaignObjective = "base_promotion"
	ObjectiveAppDownload   CampaignObjective = "app_download"
	ObjectiveProductLaunch CampaignObjective = "product_launch"
	ObjectiveAwareness     CampaignObjective = "awareness"
	ObjectiveEvent         CampaignObjective = "event"
	ObjectiveCause         CampaignObjective = "cause"
)

// Campaign maps to the `campaigns` table.
type Campaign struct {
	ID                uuid.UUID         `json:"id"`
	ClientID          uuid.UUID         `json:"client_id"`
	DistributorID     *uuid.UUID        `json:"distributor_id,omitempty"`
	Name              string            `json:"name"`
	Objective         CampaignObjective `json:"objective"`
	CountryCode       string            `json:"country_code"`
	HasExplainerVideo bool              `json:"has_explainer_video"`
	TargetURL         string            `json:"target_url"`
	Budget            int64             `json:"budget"`          // in cents, fixed at creation
	CostPerScan       int64             `json:"cost_per_scan"`   // in cents, frozen at approval
	SpentAmount       int64             `json:"spent_amount"`    // in cents
	CampaignCredit    int64             `json:"campaign_credit"` // budget - spent_amount
	MaxScans          int               `json:"max_scans"`
	TotalScans        int               `json:"total_scans"`
	Status            CampaignStatus    `json:"status"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// scanEligibleStatuses are the states in which a campaign may accept scans.
var scanEligibleStatuses = map[CampaignStatus]bool{
	CampaignStatusApproved: true,
	CampaignStatusActive:   true,
	CampaignStatusLive:     true,
}

// IsScanEligible reports whether the campaign's status allows accepting scans.
// Budget and scan-count headroom are checked separately, under the settlement
// row lock.
func (c *Campaign) IsScanEligible() bool {
	return scanEligibleStatuses[c.Status]
}

// HasBudgetFor reports whether the campaign can still afford one scan at the
// given price. Advisory only: the settlement transaction re-checks this under
// a row lock.
func (c *Campaign) HasBudgetFor(costPerScan int64) bool {
	return c.CampaignCredit >= costPerScan && c.TotalScans < c.MaxScans
}

// statusTransitions is the forward-only campaign state machine. Rejection is
// reachable from pre-approval states only; completed and rejected are
// terminal.
var statusTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:       {CampaignStatusSubmitted, CampaignStatusRejected},
	CampaignStatusSubmitted:   {CampaignStatusUnderReview, CampaignStatusApproved, CampaignStatusRejected},
	CampaignStatusUnderReview: {CampaignStatusApproved, CampaignStatusRejected},
	CampaignStatusApproved:    {CampaignStatusActive, CampaignStatusLive, CampaignStatusCompleted},
	CampaignStatusActive:      {CampaignStatusLive, CampaignStatusCompleted},
	CampaignStatusLive:        {CampaignStatusCompleted},
	CampaignStatusCompleted:   {},
	CampaignStatusRejected:    {},
}

// CanTransitionTo reports whether moving from the campaign's current status to
// the target status is a legal state-machine step.
func (c *Campaign) CanTransitionTo(target CampaignStatus) bool {
	for _, allowed := range statusTransitions[c.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CampaignTotals is the result of recomputing a campaign's counters from the
// earnings ledger.
type CampaignTotals struct {
	CampaignID     uuid.UUID `json:"campaign_id"`
	SpentAmount    int64     `json:"spent_amount"`
	CampaignCredit int64     `json:"campaign_credit"`
	TotalScans     int       `json:"total_scans"`
}

// CampaignSummary is the read model served to reporting collaborators.
type CampaignSummary struct {
	Campaign      Campaign `json:"campaign"`
	LedgerAmount  int64    `json:"ledger_amount"`  // SUM(earnings.amount) for type=scan
	LedgerScans   int      `json:"ledger_scans"`   // COUNT(earnings) for type=scan
	EarningsCount int      `json:"earnings_count"` // all earning rows for the campaign
}
