/**
 * @description
 * This file implements per-scan pricing resolution. The price is derived from
 * the campaign's objective, whether it ships an explainer video, and a country
 * multiplier, and is resolved exactly once at approval time. After approval
 * the stamped cost_per_scan on the campaign row is authoritative and this
 * logic is only consulted again by the pricing backfill job.
 */

package app

import (
	"strings"

	"github.com/adreach/reward-service/internal/domain"
)

// Base per-scan prices in cents.
const (
	basePromotionCost = 100
	premiumScanCost   = 500
)

// countryMultipliers scales the resolved price for markets priced in larger
// local units. Unlisted countries use a multiplier of 1.
var countryMultipliers = map[string]int64{
	"IN": 10,
	"NG": 5,
	"ID": 8,
}

// ResolveCostPerScan computes the per-scan price for a campaign. App download
// and product launch campaigns always pay the premium rate; awareness, event
// and cause campaigns pay it only when they carry an explainer video. Unknown
// objectives fall back to base promotion pricing.
func ResolveCostPerScan(objective domain.CampaignObjective, hasExplainerVideo bool, countryCode string) int64 {
	var base int64
	switch objective {
	case domain.ObjectiveAppDownload, domain.ObjectiveProductLaunch:
		base = premiumScanCost
	case domain.ObjectiveAwareness, domain.ObjectiveEvent, domain.ObjectiveCause:
		if hasExplainerVideo {
			base = premiumScanCost
		} else {
			base = basePromotionCost
		}
	default:
		base = basePromotionCost
	}

	multiplier := int64(1)
	if m, ok := countryMultipliers[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		multiplier = m
	}
	return base * multiplier
}

// MaxScansFor derives the scan cap implied by a budget at a given price.
func MaxScansFor(budget, costPerScan int64) int {
	if costPerScan <= 0 {
		return 0
	}
	return int(budget / costPerScan)
}
