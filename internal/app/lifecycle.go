/**
 * @description
 * This file implements the campaign lifecycle operations: approval with price
 * freezing, batch activation of approved campaigns, and batch completion of
 * campaigns that exhausted their budget or scan cap outside the settlement
 * path. The batch operations are driven by the scheduler and are safe to run
 * repeatedly.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/adreach/reward-service/pkg/rabbitmq"
	"github.com/google/uuid"
)

const lifecycleBatchLimit = 500

// LifecycleResult counts the outcome of a batch lifecycle run.
type LifecycleResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}

// ApproveCampaign moves a campaign into approved status and freezes its
// pricing: cost_per_scan is resolved once from the campaign's attributes and
// max_scans derived from the budget. The client is granted the submission
// venture shares.
func (s *Service) ApproveCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	campaign, err := s.repo.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateCampaignStatus(ctx, id, domain.CampaignStatusApproved)
	if err != nil {
		return nil, err
	}

	cost := ResolveCostPerScan(campaign.Objective, campaign.HasExplainerVideo, campaign.CountryCode)
	maxScans := MaxScansFor(campaign.Budget, cost)
	frozen, err := s.repo.FreezeCampaignPricing(ctx, id, cost, maxScans)
	if err != nil {
		return nil, fmt.Errorf("failed to freeze pricing for campaign %s: %w", id, err)
	}

	grant := VentureGrantFor(domain.ActionCampaignSubmitted, campaign.ClientID, &campaign.ID)
	if err := s.repo.GrantVentureShares(ctx, grant); err != nil {
		log.Printf("level=error component=app msg=\"failed to grant submission venture shares\" campaign_id=%s error=%v", id, err)
	}

	log.Printf("level=info component=app operation=approve_campaign campaign_id=%s cost_per_scan=%d max_scans=%d status=%s",
		id, frozen.CostPerScan, frozen.MaxScans, updated.Status)
	return frozen, nil
}

// ActivateApprovedCampaigns moves all approved campaigns into active status.
// Individual transition failures are logged and counted without aborting the
// batch.
func (s *Service) ActivateApprovedCampaigns(ctx context.Context) (*LifecycleResult, error) {
	campaigns, err := s.repo.ListApprovedCampaigns(ctx, lifecycleBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved campaigns: %w", err)
	}

	result := &LifecycleResult{}
	for _, c := range campaigns {
		result.Processed++
		if _, err := s.repo.UpdateCampaignStatus(ctx, c.ID, domain.CampaignStatusActive); err != nil {
			result.Failed++
			log.Printf("level=error component=app operation=activate_campaigns campaign_id=%s error=%v", c.ID, err)
			continue
		}
		result.Updated++
	}

	log.Printf("level=info component=app operation=activate_campaigns processed=%d updated=%d failed=%d",
		result.Processed, result.Updated, result.Failed)
	return result, nil
}

// CompleteExpiredCampaigns completes open campaigns whose credit or scan
// headroom has run out. This sweeps up campaigns whose final scan happened
// before completion logic existed and any rows drifted by manual edits.
func (s *Service) CompleteExpiredCampaigns(ctx context.Context) (*LifecycleResult, error) {
	campaigns, err := s.repo.ListExhaustedOpenCampaigns(ctx, lifecycleBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exhausted campaigns: %w", err)
	}

	result := &LifecycleResult{}
	for _, c := range campaigns {
		result.Processed++
		updated, err := s.repo.UpdateCampaignStatus(ctx, c.ID, domain.CampaignStatusCompleted)
		if err != nil {
			result.Failed++
			log.Printf("level=error component=app operation=complete_campaigns campaign_id=%s error=%v", c.ID, err)
			continue
		}
		result.Updated++

		if c.DistributorID != nil {
			grant := VentureGrantFor(domain.ActionCampaignCompleted, *c.DistributorID, &c.ID)
			if err := s.repo.GrantVentureShares(ctx, grant); err != nil {
				log.Printf("level=error component=app msg=\"failed to grant completion venture shares\" campaign_id=%s error=%v", c.ID, err)
			}
		}

		if s.eventProducer != nil {
			event := rabbitmq.CampaignCompletedEvent{
				CampaignID:  updated.ID,
				ClientID:    updated.ClientID,
				SpentAmount: updated.SpentAmount,
				TotalScans:  updated.TotalScans,
				CompletedAt: time.Now().UTC(),
			}
			if err := s.eventProducer.Publish(ctx, rabbitmq.ExchangeName, rabbitmq.RoutingKeyCampaignCompleted, event); err != nil {
				log.Printf("level=warn component=app msg=\"failed to publish campaign.completed event\" campaign_id=%s error=%v", c.ID, err)
			}
		}
	}

	log.Printf("level=info component=app operation=complete_campaigns processed=%d updated=%d failed=%d",
		result.Processed, result.Updated, result.Failed)
	return result, nil
}
