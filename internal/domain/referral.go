/**
 * @description
 * This file defines the referral graph and venture share models. Referrals
 * link agents to the distributors they onboarded; the earliest agent-to-
 * distributor edge determines who earns the 10% scan commission. Venture
 * shares are an append-only grant ledger rewarding platform-building actions
 * with equity-like units.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReferralType enumerates the edge kinds in the referral graph.
type ReferralType string

const (
	// ReferralAgentToDistributor marks an agent who onboarded a distributor.
	ReferralAgentToDistributor ReferralType = "da_to_dcd"
	// ReferralDistributorToClient marks a distributor who brought a client.
	ReferralDistributorToClient ReferralType = "dcd_to_client"
)

// Referral maps to the `referrals` table.
type Referral struct {
	ID         uuid.UUID    `json:"id"`
	ReferrerID uuid.UUID    `json:"referrer_id"`
	ReferredID uuid.UUID    `json:"referred_id"`
	Type       ReferralType `json:"type"`
	CreatedAt  time.Time    `json:"created_at"`
}

// VentureShareAction enumerates the grant-earning actions.
type VentureShareAction string

const (
	ActionReferralMade      VentureShareAction = "referral_made"
	ActionCampaignSubmitted VentureShareAction = "campaign_submitted"
	ActionCampaignCompleted VentureShareAction = "campaign_completed"
)

// VentureShare maps to the `venture_shares` table. Units and value are
// granted together; balances are derived by summation, never stored.
type VentureShare struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Action    VentureShareAction `json:"action"`
	Units     int64              `json:"units"`
	Value     int64              `json:"value"` // in cents
	SubjectID *uuid.UUID         `json:"subject_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// VentureShareBalance is a user's summed grant position.
type VentureShareBalance struct {
	UserID     uuid.UUID `json:"user_id"`
	TotalUnits int64     `json:"total_units"`
	TotalValue int64     `json:"total_value"`
	GrantCount int       `json:"grant_count"`
}
