package app

import (
	"testing"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/google/uuid"
)

func TestVentureGrantSchedule(t *testing.T) {
	userID := uuid.New()
	subjectID := uuid.New()

	cases := []struct {
		action    domain.VentureShareAction
		wantUnits int64
		wantValue int64
	}{
		{domain.ActionReferralMade, 50, 5},
		{domain.ActionCampaignSubmitted, 100, 10},
		{domain.ActionCampaignCompleted, 200, 20},
	}
	for _, tc := range cases {
		grant := VentureGrantFor(tc.action, userID, &subjectID)
		if grant.Units != tc.wantUnits || grant.Value != tc.wantValue {
			t.Fatalf("grant for %s: expected %d/%d, got %d/%d", tc.action, tc.wantUnits, tc.wantValue, grant.Units, grant.Value)
		}
		if grant.UserID != userID || grant.SubjectID == nil || *grant.SubjectID != subjectID {
			t.Fatalf("grant for %s addressed wrong: %+v", tc.action, grant)
		}
	}
}

func TestVentureGrantForUnknownActionIsZero(t *testing.T) {
	grant := VentureGrantFor(domain.VentureShareAction("logged_in"), uuid.New(), nil)
	if grant.Units != 0 || grant.Value != 0 {
		t.Fatalf("expected zero grant, got %+v", grant)
	}
}
