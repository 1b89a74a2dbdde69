/**
 * @description
 * This file defines the event payloads published by the reward-service.
 * Amounts are in cents.
 */

package rabbitmq

import (
	"time"

	"github.com/google/uuid"
)

// CampaignCompletedEvent is published when a campaign exhausts its budget or
// passes its end date.
type CampaignCompletedEvent struct {
	CampaignID  uuid.UUID `json:"campaign_id"`
	ClientID    uuid.UUID `json:"client_id"`
	SpentAmount int64     `json:"spent_amount"`
	TotalScans  int       `json:"total_scans"`
	CompletedAt time.Time `json:"completed_at"`
}

// ScanRejectedEvent is published when a scan is refused for a business reason.
type ScanRejectedEvent struct {
	DistributorID uuid.UUID  `json:"distributor_id"`
	CampaignID    *uuid.UUID `json:"campaign_id,omitempty"`
	Reason        string     `json:"reason"`
	Fingerprint   string     `json:"fingerprint,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// EarningRecordedEvent is published for each settled scan, carrying the full
// split so payout consumers need no further lookups.
type EarningRecordedEvent struct {
	ScanID           uuid.UUID  `json:"scan_id"`
	CampaignID       uuid.UUID  `json:"campaign_id"`
	DistributorID    uuid.UUID  `json:"distributor_id"`
	AgentID          *uuid.UUID `json:"agent_id,omitempty"`
	CostPerScan      int64      `json:"cost_per_scan"`
	DistributorShare int64      `json:"distributor_share"`
	AgentShare       int64      `json:"agent_share"`
	PlatformShare    int64      `json:"platform_share"`
	RecordedAt       time.Time  `json:"recorded_at"`
}
