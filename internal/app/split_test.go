package app

import (
	"testing"

	"github.com/adreach/reward-service/internal/domain"
)

func TestComputeSplitWithAgent(t *testing.T) {
	split := ComputeSplit(500, true)
	if split.DistributorShare != 300 {
		t.Fatalf("expected distributor share 300, got %d", split.DistributorShare)
	}
	if split.AgentShare != 50 {
		t.Fatalf("expected agent share 50, got %d", split.AgentShare)
	}
	if split.PlatformShare != 150 {
		t.Fatalf("expected platform share 150, got %d", split.PlatformShare)
	}
}

func TestComputeSplitWithoutAgent(t *testing.T) {
	split := ComputeSplit(500, false)
	if split.AgentShare != 0 {
		t.Fatalf("expected zero agent share, got %d", split.AgentShare)
	}
	if split.DistributorShare != 300 || split.PlatformShare != 200 {
		t.Fatalf("expected 300/200, got %d/%d", split.DistributorShare, split.PlatformShare)
	}
}

func TestComputeSplitRoundingGoesToPlatform(t *testing.T) {
	// 33 cents: floor(19.8)=19 to the distributor, floor(3.3)=3 to the
	// agent, platform takes the remaining 11 including the rounding loss.
	split := ComputeSplit(33, true)
	if split.DistributorShare != 19 || split.AgentShare != 3 || split.PlatformShare != 11 {
		t.Fatalf("unexpected split for 33: %d/%d/%d", split.DistributorShare, split.AgentShare, split.PlatformShare)
	}
}

func TestComputeSplitAlwaysSumsToCost(t *testing.T) {
	for cost := int64(1); cost <= 2000; cost++ {
		for _, hasAgent := range []bool{true, false} {
			split := ComputeSplit(cost, hasAgent)
			if split.Total() != cost {
				t.Fatalf("split for cost=%d hasAgent=%t sums to %d", cost, hasAgent, split.Total())
			}
			if split.DistributorShare < 0 || split.AgentShare < 0 || split.PlatformShare < 0 {
				t.Fatalf("negative share for cost=%d: %+v", cost, split)
			}
		}
	}
}

func TestComputeSplitNonPositiveCost(t *testing.T) {
	if split := ComputeSplit(0, true); split != (domain.Split{}) {
		t.Fatalf("expected zero split for zero cost, got %+v", split)
	}
	if split := ComputeSplit(-100, true); split != (domain.Split{}) {
		t.Fatalf("expected zero split for negative cost, got %+v", split)
	}
}
