package app

import (
	"context"
	"errors"
	"testing"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/adreach/reward-service/internal/store"
	"github.com/adreach/reward-service/pkg/rabbitmq"
	"github.com/google/uuid"
)

func TestApproveCampaignFreezesPricing(t *testing.T) {
	campaign := &domain.Campaign{
		ID:                uuid.New(),
		ClientID:          uuid.New(),
		Objective:         domain.ObjectiveAwareness,
		HasExplainerVideo: true,
		CountryCode:       "US",
		Budget:            10000,
		Status:            domain.CampaignStatusSubmitted,
	}

	var frozenCost int64
	var frozenMax int
	var grantedTo uuid.UUID
	repo := &repoStub{
		getCampaignByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
			return campaign, nil
		},
		updateCampaignStatusFn: func(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (*domain.Campaign, error) {
			if status != domain.CampaignStatusApproved {
				t.Fatalf("expected transition to approved, got %s", status)
			}
			updated := *campaign
			updated.Status = status
			return &updated, nil
		},
		freezeCampaignPricingFn: func(ctx context.Context, id uuid.UUID, costPerScan int64, maxScans int) (*domain.Campaign, error) {
			frozenCost = costPerScan
			frozenMax = maxScans
			frozen := *campaign
			frozen.Status = domain.CampaignStatusApproved
			frozen.CostPerScan = costPerScan
			frozen.MaxScans = maxScans
			return &frozen, nil
		},
		grantVentureSharesFn: func(ctx context.Context, grant *domain.VentureShare) error {
			grantedTo = grant.UserID
			if grant.Action != domain.ActionCampaignSubmitted {
				t.Fatalf("expected campaign_submitted grant, got %s", grant.Action)
			}
			return nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	frozen, err := svc.ApproveCampaign(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if frozenCost != 500 || frozenMax != 20 {
		t.Fatalf("expected awareness with video priced at 500 with 20 scans, got %d/%d", frozenCost, frozenMax)
	}
	if frozen.CostPerScan != 500 {
		t.Fatalf("expected returned campaign to carry frozen price, got %d", frozen.CostPerScan)
	}
	if grantedTo != campaign.ClientID {
		t.Fatalf("expected submission grant to client, got %s", grantedTo)
	}
}

func TestApproveCampaignRejectsIllegalTransition(t *testing.T) {
	campaign := &domain.Campaign{ID: uuid.New(), Status: domain.CampaignStatusCompleted}
	repo := &repoStub{
		getCampaignByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
			return campaign, nil
		},
		updateCampaignStatusFn: func(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (*domain.Campaign, error) {
			return nil, store.ErrInvalidStatusTransition
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	if _, err := svc.ApproveCampaign(context.Background(), campaign.ID); !errors.Is(err, store.ErrInvalidStatusTransition) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestActivateApprovedCampaignsContinuesPastFailures(t *testing.T) {
	good := domain.Campaign{ID: uuid.New(), Status: domain.CampaignStatusApproved}
	bad := domain.Campaign{ID: uuid.New(), Status: domain.CampaignStatusApproved}
	repo := &repoStub{
		listApprovedCampaignsFn: func(ctx context.Context, limit int) ([]domain.Campaign, error) {
			return []domain.Campaign{bad, good}, nil
		},
		updateCampaignStatusFn: func(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (*domain.Campaign, error) {
			if id == bad.ID {
				return nil, store.ErrInvalidStatusTransition
			}
			updated := good
			updated.Status = status
			return &updated, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.ActivateApprovedCampaigns(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Processed != 2 || result.Updated != 1 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCompleteExpiredCampaignsGrantsAndPublishes(t *testing.T) {
	distributorID := uuid.New()
	exhausted := domain.Campaign{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		DistributorID:  &distributorID,
		Status:         domain.CampaignStatusLive,
		CampaignCredit: 40,
		CostPerScan:    500,
	}

	var grantedAction domain.VentureShareAction
	repo := &repoStub{
		listExhaustedFn: func(ctx context.Context, limit int) ([]domain.Campaign, error) {
			return []domain.Campaign{exhausted}, nil
		},
		updateCampaignStatusFn: func(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (*domain.Campaign, error) {
			if status != domain.CampaignStatusCompleted {
				t.Fatalf("expected transition to completed, got %s", status)
			}
			updated := exhausted
			updated.Status = status
			return &updated, nil
		},
		grantVentureSharesFn: func(ctx context.Context, grant *domain.VentureShare) error {
			grantedAction = grant.Action
			return nil
		},
	}
	producer := &publisherStub{}
	svc := NewService(repo, producer, nil, ServiceSettings{})

	result, err := svc.CompleteExpiredCampaigns(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if grantedAction != domain.ActionCampaignCompleted {
		t.Fatalf("expected campaign_completed grant, got %q", grantedAction)
	}
	if producer.count(rabbitmq.RoutingKeyCampaignCompleted) != 1 {
		t.Fatal("expected a campaign.completed event")
	}
}
