/**
 * @description
 * This file defines the scan event model and the request/result DTOs for the
 * scan recording pipeline. A scan is one end-user QR code read attributed to a
 * distributor; a recorded scan always carries the resolved campaign and the
 * price that was charged against its budget.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Scan maps to the `scans` table. Rejected scans are not persisted; only
// settled scans that moved money appear here.
type Scan struct {
	ID            uuid.UUID `json:"id"`
	CampaignID    uuid.UUID `json:"campaign_id"`
	DistributorID uuid.UUID `json:"distributor_id"`
	CostPerScan   int64     `json:"cost_per_scan"` // price charged, in cents
	Fingerprint   string    `json:"fingerprint"`
	IPAddress     string    `json:"ip_address,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
	ScannedAt     time.Time `json:"scanned_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Rejection reason codes returned when a scan is not payable. These are
// business outcomes, not transport errors; the API reports them with a 200.
const (
	ReasonInvalidDistributor = "invalid_distributor"
	ReasonNoActiveCampaign   = "no_active_campaign"
	ReasonBudgetExhausted    = "budget_exhausted"
	ReasonDuplicate          = "duplicate"
	ReasonRateLimited        = "rate_limited"
	ReasonSystemError        = "system_error"
)

// RecordScanRequest is the input to the scan recording operation. CampaignID
// is optional; when absent the service resolves the earliest eligible campaign
// assigned to the distributor.
type RecordScanRequest struct {
	DistributorID uuid.UUID  `json:"distributor_id"`
	CampaignID    *uuid.UUID `json:"campaign_id,omitempty"`
	Fingerprint   string     `json:"fingerprint"`
	IPAddress     string     `json:"ip_address,omitempty"`
	UserAgent     string     `json:"user_agent,omitempty"`
	ScannedAt     time.Time  `json:"scanned_at,omitempty"`
}

// ScanResult reports the outcome of a scan attempt. Accepted results carry the
// persisted scan and the split that was credited; rejected results carry a
// reason code instead.
type ScanResult struct {
	Accepted          bool       `json:"accepted"`
	Reason            string     `json:"reason,omitempty"`
	ScanID            *uuid.UUID `json:"scan_id,omitempty"`
	CampaignID        *uuid.UUID `json:"campaign_id,omitempty"`
	CostPerScan       int64      `json:"cost_per_scan,omitempty"`
	DistributorShare  int64      `json:"distributor_share,omitempty"`
	AgentShare        int64      `json:"agent_share,omitempty"`
	PlatformShare     int64      `json:"platform_share,omitempty"`
	CampaignCompleted bool       `json:"campaign_completed,omitempty"`
	RedirectURL       string     `json:"redirect_url,omitempty"`
}
