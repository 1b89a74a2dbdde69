/**
 * @description
 * This file defines the earning ledger model. Earnings are append-only rows
 * recording money owed to a payee for a settled scan. The scan-type row is the
 * budget-bearing row: its amount equals the campaign's cost_per_scan, so the
 * sum of scan-type rows always reconciles with the campaign's spent_amount.
 * The distributor's payable portion of that row lives in commission_amount;
 * agent commissions are separate commission-type rows.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EarningType distinguishes budget-bearing scan rows from agent commissions.
type EarningType string

const (
	EarningTypeScan       EarningType = "scan"
	EarningTypeCommission EarningType = "commission"
)

// EarningStatus tracks payout progress for an earning row.
type EarningStatus string

const (
	EarningStatusPending EarningStatus = "pending"
	EarningStatusPaid    EarningStatus = "paid"
)

// Earning maps to the `earnings` table.
type Earning struct {
	ID               uuid.UUID     `json:"id"`
	ScanID           uuid.UUID     `json:"scan_id"`
	CampaignID       uuid.UUID     `json:"campaign_id"`
	PayeeID          uuid.UUID     `json:"payee_id"`
	Type             EarningType   `json:"type"`
	Amount           int64         `json:"amount"`            // in cents
	CommissionAmount int64         `json:"commission_amount"` // payee's payable share of Amount, in cents
	Status           EarningStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Split is the deterministic division of one scan's cost. DistributorShare is
// 60% of the cost, AgentShare is 10% when a referring agent exists (zero
// otherwise), and PlatformShare absorbs the remainder including integer
// rounding, so the three always sum to the cost.
type Split struct {
	DistributorShare int64 `json:"distributor_share"`
	AgentShare       int64 `json:"agent_share"`
	PlatformShare    int64 `json:"platform_share"`
}

// Total returns the cost the split was computed from.
func (s Split) Total() int64 {
	return s.DistributorShare + s.AgentShare + s.PlatformShare
}
