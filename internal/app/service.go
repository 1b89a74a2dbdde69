/**
 * @description
 * This file contains the core application service for the reward-service. The
 * central operation is RecordScan: validate a scan attempt, resolve the
 * campaign paying for it, compute the revenue split, and hand the whole
 * settlement to the store in one atomic transaction. Business rejections are
 * reported as outcomes with a reason code, not as errors; only infrastructure
 * failures surface as errors.
 *
 * @dependencies
 * - internal/store: The data persistence layer.
 * - pkg/rabbitmq: The event publishing client.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/adreach/reward-service/internal/store"
	"github.com/adreach/reward-service/pkg/rabbitmq"
	"github.com/google/uuid"
)

// ServiceSettings bundles the tunables of the scan pipeline.
type ServiceSettings struct {
	// DuplicateWindow is the cooldown within which the same fingerprint may
	// not scan the same campaign twice.
	DuplicateWindow time.Duration
	// FingerprintRateLimit caps scan attempts per fingerprint per window.
	FingerprintRateLimit  int64
	FingerprintRateWindow time.Duration
	// IPRateLimit caps scan attempts per source IP per window.
	IPRateLimit  int64
	IPRateWindow time.Duration
	// FallbackRedirectURL is where scanners are sent when no campaign pays
	// for the scan.
	FallbackRedirectURL string
}

// Service provides the core business logic of the reward-service.
type Service struct {
	repo          store.Repository
	eventProducer rabbitmq.Publisher
	rateLimiter   *RedisScanRateLimiter
	settings      ServiceSettings
}

// NewService creates a new core application service. A nil rateLimiter
// disables rate limiting.
func NewService(repo store.Repository, eventProducer rabbitmq.Publisher, rateLimiter *RedisScanRateLimiter, settings ServiceSettings) *Service {
	if settings.DuplicateWindow <= 0 {
		settings.DuplicateWindow = 24 * time.Hour
	}
	return &Service{
		repo:          repo,
		eventProducer: eventProducer,
		rateLimiter:   rateLimiter,
		settings:      settings,
	}
}

// RecordScan processes one QR scan attempt end to end. The returned result is
// always non-nil on a nil error: rejected scans come back with Accepted=false
// and a reason code. A non-nil error means the attempt could not be judged at
// all and should be surfaced as a server failure.
func (s *Service) RecordScan(ctx context.Context, req domain.RecordScanRequest) (*domain.ScanResult, error) {
	if req.DistributorID == uuid.Nil {
		return s.reject(ctx, req, nil, domain.ReasonInvalidDistributor), nil
	}
	if req.ScannedAt.IsZero() {
		req.ScannedAt = time.Now().UTC()
	}

	if rejected := s.checkRateLimits(ctx, req); rejected {
		return s.reject(ctx, req, nil, domain.ReasonRateLimited), nil
	}

	if _, err := s.repo.GetDistributor(ctx, req.DistributorID); err != nil {
		if errors.Is(err, store.ErrDistributorNotFound) {
			return s.reject(ctx, req, nil, domain.ReasonInvalidDistributor), nil
		}
		return nil, fmt.Errorf("failed to validate distributor: %w", err)
	}

	campaign, err := s.resolveCampaign(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrBudgetExhausted):
			// Assignments exist but every budget is spent.
			return s.reject(ctx, req, req.CampaignID, domain.ReasonBudgetExhausted), nil
		case errors.Is(err, store.ErrNoEligibleCampaign), errors.Is(err, store.ErrCampaignNotFound):
			return s.reject(ctx, req, nil, domain.ReasonNoActiveCampaign), nil
		}
		return nil, fmt.Errorf("failed to resolve campaign: %w", err)
	}
	if !campaign.IsScanEligible() {
		// A completed campaign is a spent budget, not a missing one.
		if campaign.Status == domain.CampaignStatusCompleted {
			return s.reject(ctx, req, &campaign.ID, domain.ReasonBudgetExhausted), nil
		}
		return s.reject(ctx, req, &campaign.ID, domain.ReasonNoActiveCampaign), nil
	}
	if !campaign.HasBudgetFor(campaign.CostPerScan) {
		return s.reject(ctx, req, &campaign.ID, domain.ReasonBudgetExhausted), nil
	}

	agentID, err := s.repo.GetReferringAgent(ctx, req.DistributorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve referring agent: %w", err)
	}

	// cost_per_scan is frozen at approval, so the split can be computed
	// before the settlement lock is taken.
	split := ComputeSplit(campaign.CostPerScan, agentID != nil)

	settled, err := s.repo.SettleScanAtomic(ctx, store.SettleScanParams{
		CampaignID:       campaign.ID,
		DistributorID:    req.DistributorID,
		AgentID:          agentID,
		CostPerScan:      campaign.CostPerScan,
		DistributorShare: split.DistributorShare,
		AgentShare:       split.AgentShare,
		Fingerprint:      req.Fingerprint,
		IPAddress:        req.IPAddress,
		UserAgent:        req.UserAgent,
		ScannedAt:        req.ScannedAt,
		DuplicateWindow:  s.settings.DuplicateWindow,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrBudgetExhausted):
			return s.reject(ctx, req, &campaign.ID, domain.ReasonBudgetExhausted), nil
		case errors.Is(err, store.ErrDuplicateScan):
			return s.reject(ctx, req, &campaign.ID, domain.ReasonDuplicate), nil
		case errors.Is(err, store.ErrNoEligibleCampaign), errors.Is(err, store.ErrCampaignNotFound):
			return s.reject(ctx, req, &campaign.ID, domain.ReasonNoActiveCampaign), nil
		}
		return nil, fmt.Errorf("failed to settle scan: %w", err)
	}

	log.Printf("level=info component=app operation=record_scan outcome=accepted scan_id=%s campaign_id=%s cost=%d remaining_credit=%d",
		settled.ScanID, campaign.ID, campaign.CostPerScan, settled.RemainingCredit)

	s.publishEarningRecorded(ctx, settled.ScanID, campaign, req.DistributorID, agentID, split)
	if settled.CampaignCompleted {
		s.onCampaignCompleted(ctx, campaign, settled)
	}

	campaignID := campaign.ID
	return &domain.ScanResult{
		Accepted:          true,
		ScanID:            &settled.ScanID,
		CampaignID:        &campaignID,
		CostPerScan:       campaign.CostPerScan,
		DistributorShare:  split.DistributorShare,
		AgentShare:        split.AgentShare,
		PlatformShare:     split.PlatformShare,
		CampaignCompleted: settled.CampaignCompleted,
		RedirectURL:       campaign.TargetURL,
	}, nil
}

// resolveCampaign picks the campaign that pays for the scan. An explicit
// campaign id must belong to the distributor; otherwise the earliest-created
// eligible assignment wins.
func (s *Service) resolveCampaign(ctx context.Context, req domain.RecordScanRequest) (*domain.Campaign, error) {
	if req.CampaignID != nil {
		return s.repo.GetCampaignForDistributor(ctx, *req.CampaignID, req.DistributorID)
	}
	return s.repo.GetEligibleCampaign(ctx, req.DistributorID)
}

// checkRateLimits consumes the fingerprint and IP windows. Limiter failures
// fail open: a Redis outage must not stop scans from settling.
func (s *Service) checkRateLimits(ctx context.Context, req domain.RecordScanRequest) bool {
	if s.rateLimiter == nil {
		return false
	}
	checks := []struct {
		scope   string
		subject string
		limit   int64
		window  time.Duration
	}{
		{"fingerprint", req.Fingerprint, s.settings.FingerprintRateLimit, s.settings.FingerprintRateWindow},
		{"ip", req.IPAddress, s.settings.IPRateLimit, s.settings.IPRateWindow},
	}
	for _, check := range checks {
		if check.limit <= 0 || check.subject == "" {
			continue
		}
		_, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, check.scope, check.subject, check.limit, check.window)
		if err != nil {
			log.Printf("level=warn component=app msg=\"rate limiter unavailable, failing open\" scope=%s error=%v", check.scope, err)
			continue
		}
		if retryAfter > 0 {
			log.Printf("level=info component=app operation=record_scan outcome=rate_limited scope=%s retry_after_s=%d", check.scope, retryAfter)
			return true
		}
	}
	return false
}

// reject builds a rejection result and publishes the scan.rejected event.
func (s *Service) reject(ctx context.Context, req domain.RecordScanRequest, campaignID *uuid.UUID, reason string) *domain.ScanResult {
	log.Printf("level=info component=app operation=record_scan outcome=rejected reason=%s distributor_id=%s", reason, req.DistributorID)
	if s.eventProducer != nil {
		event := rabbitmq.ScanRejectedEvent{
			DistributorID: req.DistributorID,
			CampaignID:    campaignID,
			Reason:        reason,
			Fingerprint:   req.Fingerprint,
			OccurredAt:    time.Now().UTC(),
		}
		if err := s.eventProducer.Publish(ctx, rabbitmq.ExchangeName, rabbitmq.RoutingKeyScanRejected, event); err != nil {
			log.Printf("level=warn component=app msg=\"failed to publish scan.rejected event\" error=%v", err)
		}
	}
	return &domain.ScanResult{
		Accepted:    false,
		Reason:      reason,
		RedirectURL: s.settings.FallbackRedirectURL,
	}
}

func (s *Service) publishEarningRecorded(ctx context.Context, scanID uuid.UUID, campaign *domain.Campaign, distributorID uuid.UUID, agentID *uuid.UUID, split domain.Split) {
	if s.eventProducer == nil {
		return
	}
	event := rabbitmq.EarningRecordedEvent{
		ScanID:           scanID,
		CampaignID:       campaign.ID,
		DistributorID:    distributorID,
		AgentID:          agentID,
		CostPerScan:      campaign.CostPerScan,
		DistributorShare: split.DistributorShare,
		AgentShare:       split.AgentShare,
		PlatformShare:    split.PlatformShare,
		RecordedAt:       time.Now().UTC(),
	}
	if err := s.eventProducer.Publish(ctx, rabbitmq.ExchangeName, rabbitmq.RoutingKeyEarningRecorded, event); err != nil {
		log.Printf("level=warn component=app msg=\"failed to publish earning.recorded event\" scan_id=%s error=%v", scanID, err)
	}
}

// onCampaignCompleted publishes the completion event and grants the
// distributor the campaign_completed venture shares.
func (s *Service) onCampaignCompleted(ctx context.Context, campaign *domain.Campaign, settled *store.SettleScanResult) {
	log.Printf("level=info component=app msg=\"campaign completed by final scan\" campaign_id=%s total_scans=%d", campaign.ID, settled.TotalScans)

	if campaign.DistributorID != nil {
		grant := VentureGrantFor(domain.ActionCampaignCompleted, *campaign.DistributorID, &campaign.ID)
		if err := s.repo.GrantVentureShares(ctx, grant); err != nil {
			log.Printf("level=error component=app msg=\"failed to grant completion venture shares\" campaign_id=%s error=%v", campaign.ID, err)
		}
	}

	if s.eventProducer != nil {
		event := rabbitmq.CampaignCompletedEvent{
			CampaignID:  campaign.ID,
			ClientID:    campaign.ClientID,
			SpentAmount: campaign.Budget - settled.RemainingCredit,
			TotalScans:  settled.TotalScans,
			CompletedAt: time.Now().UTC(),
		}
		if err := s.eventProducer.Publish(ctx, rabbitmq.ExchangeName, rabbitmq.RoutingKeyCampaignCompleted, event); err != nil {
			log.Printf("level=warn component=app msg=\"failed to publish campaign.completed event\" campaign_id=%s error=%v", campaign.ID, err)
		}
	}
}

// GetCampaignSummary exposes the reporting read model.
func (s *Service) GetCampaignSummary(ctx context.Context, id uuid.UUID) (*domain.CampaignSummary, error) {
	return s.repo.GetCampaignSummary(ctx, id)
}

// GetVentureShareBalance sums a user's venture share grants.
func (s *Service) GetVentureShareBalance(ctx context.Context, userID uuid.UUID) (*domain.VentureShareBalance, error) {
	return s.repo.GetVentureShareBalance(ctx, userID)
}
