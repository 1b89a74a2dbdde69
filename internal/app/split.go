/**
 * @description
 * This file implements the deterministic revenue split for one settled scan:
 * 60% to the distributor, 10% to the referring agent when one exists, and the
 * remainder to the platform. Shares are computed with integer floor division
 * so the platform share absorbs any rounding remainder and the three parts
 * always sum exactly to the scan cost.
 */

package app

import "github.com/adreach/reward-service/internal/domain"

// Split percentages, in basis points of the scan cost.
const (
	distributorShareBps = 6000
	agentShareBps       = 1000
)

// ComputeSplit divides costPerScan between the distributor, the referring
// agent, and the platform. When hasAgent is false the agent share is zero and
// the platform absorbs it.
func ComputeSplit(costPerScan int64, hasAgent bool) domain.Split {
	if costPerScan <= 0 {
		return domain.Split{}
	}
	distributor := costPerScan * distributorShareBps / 10000
	var agent int64
	if hasAgent {
		agent = costPerScan * agentShareBps / 10000
	}
	return domain.Split{
		DistributorShare: distributor,
		AgentShare:       agent,
		PlatformShare:    costPerScan - distributor - agent,
	}
}
