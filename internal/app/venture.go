/**
 * @description
 * This file defines the venture share grant schedule. Each platform-building
 * action awards a fixed number of units with a fixed cent value; grants are
 * append-only and deduplicated per (user, action, subject) by the store.
 */

package app

import (
	"github.com/adreach/reward-service/internal/domain"
	"github.com/google/uuid"
)

// ventureGrantSchedule maps actions to their unit and value awards. Values
// are in cents.
var ventureGrantSchedule = map[domain.VentureShareAction]struct {
	Units int64
	Value int64
}{
	domain.ActionReferralMade:      {Units: 50, Value: 5},
	domain.ActionCampaignSubmitted: {Units: 100, Value: 10},
	domain.ActionCampaignCompleted: {Units: 200, Value: 20},
}

// VentureGrantFor builds the grant row for an action. Unknown actions yield a
// zero grant, which the store will still dedupe but award nothing for.
func VentureGrantFor(action domain.VentureShareAction, userID uuid.UUID, subjectID *uuid.UUID) *domain.VentureShare {
	award := ventureGrantSchedule[action]
	return &domain.VentureShare{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Units:     award.Units,
		Value:     award.Value,
		SubjectID: subjectID,
	}
}
