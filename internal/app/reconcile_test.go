package app

import (
	"context"
	"testing"
	"time"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/adreach/reward-service/internal/store"
	"github.com/google/uuid"
)

func orphanScan(distributorID uuid.UUID, cost int64) store.ScanWithoutEarning {
	return store.ScanWithoutEarning{
		Scan: domain.Scan{
			ID:            uuid.New(),
			CampaignID:    uuid.New(),
			DistributorID: distributorID,
			CostPerScan:   cost,
			ScannedAt:     time.Now(),
		},
		CostPerScan:   cost,
		DistributorID: distributorID,
	}
}

func TestBackfillScanEarningsInsertsMissingRows(t *testing.T) {
	distributorID := uuid.New()
	agentID := uuid.New()
	orphan := orphanScan(distributorID, 500)

	var inserted []*domain.Earning
	var recomputed []uuid.UUID
	repo := &repoStub{
		listScansWithoutEarningsFn: func(ctx context.Context, campaignID *uuid.UUID, limit int) ([]store.ScanWithoutEarning, error) {
			return []store.ScanWithoutEarning{orphan}, nil
		},
		getReferringAgentFn: func(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
			return &agentID, nil
		},
		insertEarningIfAbsentFn: func(ctx context.Context, earning *domain.Earning) error {
			inserted = append(inserted, earning)
			return nil
		},
		recomputeCampaignTotalsFn: func(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignTotals, error) {
			recomputed = append(recomputed, campaignID)
			return &domain.CampaignTotals{CampaignID: campaignID}, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.BackfillScanEarnings(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Processed != 1 || result.Repaired != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(inserted) != 2 {
		t.Fatalf("expected a scan and a commission row, got %d rows", len(inserted))
	}
	if len(recomputed) != 1 || recomputed[0] != orphan.Scan.CampaignID {
		t.Fatalf("expected repaired campaign totals recomputed, got %v", recomputed)
	}

	scanRow := inserted[0]
	if scanRow.Type != domain.EarningTypeScan || scanRow.Amount != 500 || scanRow.CommissionAmount != 300 {
		t.Fatalf("unexpected scan earning: %+v", scanRow)
	}
	if scanRow.PayeeID != distributorID || scanRow.ScanID != orphan.Scan.ID {
		t.Fatalf("scan earning addressed wrong: %+v", scanRow)
	}

	commissionRow := inserted[1]
	if commissionRow.Type != domain.EarningTypeCommission || commissionRow.Amount != 50 || commissionRow.PayeeID != agentID {
		t.Fatalf("unexpected commission earning: %+v", commissionRow)
	}
}

func TestBackfillScanEarningsSkipsExistingRows(t *testing.T) {
	repo := &repoStub{
		listScansWithoutEarningsFn: func(ctx context.Context, campaignID *uuid.UUID, limit int) ([]store.ScanWithoutEarning, error) {
			return []store.ScanWithoutEarning{orphanScan(uuid.New(), 500)}, nil
		},
		insertEarningIfAbsentFn: func(ctx context.Context, earning *domain.Earning) error {
			return store.ErrEarningExists
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.BackfillScanEarnings(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Skipped != 1 || result.Repaired != 0 {
		t.Fatalf("expected skip, got %+v", result)
	}
}

func TestBackfillScanEarningsDryRunWritesNothing(t *testing.T) {
	repo := &repoStub{
		listScansWithoutEarningsFn: func(ctx context.Context, campaignID *uuid.UUID, limit int) ([]store.ScanWithoutEarning, error) {
			return []store.ScanWithoutEarning{orphanScan(uuid.New(), 500), orphanScan(uuid.New(), 100)}, nil
		},
		insertEarningIfAbsentFn: func(ctx context.Context, earning *domain.Earning) error {
			t.Fatal("dry run must not insert")
			return nil
		},
		recomputeCampaignTotalsFn: func(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignTotals, error) {
			t.Fatal("dry run must not recompute totals")
			return nil, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.BackfillScanEarnings(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.DryRun || result.Processed != 2 || result.Repaired != 0 {
		t.Fatalf("unexpected dry run result: %+v", result)
	}
}

func TestCleanupDuplicateEarningsKeepsOldestRow(t *testing.T) {
	keeper := uuid.New()
	extra1 := uuid.New()
	extra2 := uuid.New()
	campaignID := uuid.New()

	var deleted []uuid.UUID
	var recomputed []uuid.UUID
	repo := &repoStub{
		listDuplicateEarningsFn: func(ctx context.Context, limit int) ([]store.DuplicateEarningGroup, error) {
			return []store.DuplicateEarningGroup{{
				ScanID:     uuid.New(),
				CampaignID: campaignID,
				PayeeID:    uuid.New(),
				Type:       domain.EarningTypeScan,
				IDs:        []uuid.UUID{keeper, extra1, extra2},
			}}, nil
		},
		deleteEarningsFn: func(ctx context.Context, ids []uuid.UUID) (int, error) {
			deleted = append(deleted, ids...)
			return len(ids), nil
		},
		recomputeCampaignTotalsFn: func(ctx context.Context, id uuid.UUID) (*domain.CampaignTotals, error) {
			recomputed = append(recomputed, id)
			return &domain.CampaignTotals{CampaignID: id}, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.CleanupDuplicateEarnings(context.Background(), false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Deleted != 2 {
		t.Fatalf("expected 2 deletions, got %+v", result)
	}
	for _, id := range deleted {
		if id == keeper {
			t.Fatal("oldest row must not be deleted")
		}
	}
	if len(recomputed) != 1 || recomputed[0] != campaignID {
		t.Fatalf("expected the touched campaign's totals recomputed, got %v", recomputed)
	}
}

func TestCleanupDuplicateEarningsRecomputesEachCampaignOnce(t *testing.T) {
	campaignID := uuid.New()
	groupFor := func() store.DuplicateEarningGroup {
		return store.DuplicateEarningGroup{
			ScanID:     uuid.New(),
			CampaignID: campaignID,
			PayeeID:    uuid.New(),
			Type:       domain.EarningTypeScan,
			IDs:        []uuid.UUID{uuid.New(), uuid.New()},
		}
	}
	var recomputed []uuid.UUID
	repo := &repoStub{
		listDuplicateEarningsFn: func(ctx context.Context, limit int) ([]store.DuplicateEarningGroup, error) {
			return []store.DuplicateEarningGroup{groupFor(), groupFor()}, nil
		},
		deleteEarningsFn: func(ctx context.Context, ids []uuid.UUID) (int, error) {
			return len(ids), nil
		},
		recomputeCampaignTotalsFn: func(ctx context.Context, id uuid.UUID) (*domain.CampaignTotals, error) {
			recomputed = append(recomputed, id)
			return &domain.CampaignTotals{CampaignID: id}, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	if _, err := svc.CleanupDuplicateEarnings(context.Background(), false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(recomputed) != 1 {
		t.Fatalf("expected a single recompute for the shared campaign, got %v", recomputed)
	}
}

func TestCleanupDuplicateEarningsDryRunCountsOnly(t *testing.T) {
	repo := &repoStub{
		listDuplicateEarningsFn: func(ctx context.Context, limit int) ([]store.DuplicateEarningGroup, error) {
			return []store.DuplicateEarningGroup{{
				IDs: []uuid.UUID{uuid.New(), uuid.New()},
			}}, nil
		},
		deleteEarningsFn: func(ctx context.Context, ids []uuid.UUID) (int, error) {
			t.Fatal("dry run must not delete")
			return 0, nil
		},
		recomputeCampaignTotalsFn: func(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignTotals, error) {
			t.Fatal("dry run must not recompute totals")
			return nil, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.CleanupDuplicateEarnings(context.Background(), true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.DryRun || result.Deleted != 1 {
		t.Fatalf("unexpected dry run result: %+v", result)
	}
}

func TestRecomputeCampaignTotalsSweepsAllWhenUnscoped(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	var recomputed []uuid.UUID
	repo := &repoStub{
		listCampaignIDsFn: func(ctx context.Context, limit int) ([]uuid.UUID, error) {
			return ids, nil
		},
		recomputeCampaignTotalsFn: func(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignTotals, error) {
			recomputed = append(recomputed, campaignID)
			return &domain.CampaignTotals{CampaignID: campaignID}, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.RecomputeCampaignTotals(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Processed != 3 || result.Repaired != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(recomputed) != 3 {
		t.Fatalf("expected all campaigns recomputed, got %d", len(recomputed))
	}
}

func TestRecomputeCampaignTotalsContinuesPastFailures(t *testing.T) {
	failing := uuid.New()
	healthy := uuid.New()
	repo := &repoStub{
		listCampaignIDsFn: func(ctx context.Context, limit int) ([]uuid.UUID, error) {
			return []uuid.UUID{failing, healthy}, nil
		},
		recomputeCampaignTotalsFn: func(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignTotals, error) {
			if campaignID == failing {
				return nil, store.ErrCampaignNotFound
			}
			return &domain.CampaignTotals{CampaignID: campaignID}, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.RecomputeCampaignTotals(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Failed != 1 || result.Repaired != 1 {
		t.Fatalf("expected one failure and one repair, got %+v", result)
	}
}

func TestBackfillCostPerScanStampsResolvedPrice(t *testing.T) {
	campaign := domain.Campaign{
		ID:        uuid.New(),
		Objective: domain.ObjectiveAppDownload,
		Budget:    10000,
		Status:    domain.CampaignStatusActive,
	}
	var stampedCost int64
	var stampedMax int
	repo := &repoStub{
		listMissingCostFn: func(ctx context.Context, limit int) ([]domain.Campaign, error) {
			return []domain.Campaign{campaign}, nil
		},
		freezeCampaignPricingFn: func(ctx context.Context, id uuid.UUID, costPerScan int64, maxScans int) (*domain.Campaign, error) {
			stampedCost = costPerScan
			stampedMax = maxScans
			return &campaign, nil
		},
	}
	svc := NewService(repo, &publisherStub{}, nil, ServiceSettings{})

	result, err := svc.BackfillCostPerScan(context.Background(), false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Repaired != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if stampedCost != 500 || stampedMax != 20 {
		t.Fatalf("expected 500/20 stamped, got %d/%d", stampedCost, stampedMax)
	}
}
