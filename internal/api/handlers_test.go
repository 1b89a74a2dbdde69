package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adreach/reward-service/internal/app"
	"github.com/adreach/reward-service/internal/domain"
	"github.com/adreach/reward-service/internal/store"
	"github.com/google/uuid"
)

// handlerRepoStub backs the HTTP tests with canned repository behavior.
type handlerRepoStub struct {
	store.Repository
	distributor *domain.User
	campaign    *domain.Campaign
	settleErr   error
	approved    []domain.Campaign
}

func (s *handlerRepoStub) GetDistributor(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.distributor == nil {
		return nil, store.ErrDistributorNotFound
	}
	return s.distributor, nil
}

func (s *handlerRepoStub) GetEligibleCampaign(ctx context.Context, distributorID uuid.UUID) (*domain.Campaign, error) {
	if s.campaign == nil {
		return nil, store.ErrNoEligibleCampaign
	}
	return s.campaign, nil
}

func (s *handlerRepoStub) GetReferringAgent(ctx context.Context, distributorID uuid.UUID) (*uuid.UUID, error) {
	return nil, nil
}

func (s *handlerRepoStub) SettleScanAtomic(ctx context.Context, params store.SettleScanParams) (*store.SettleScanResult, error) {
	if s.settleErr != nil {
		return nil, s.settleErr
	}
	return &store.SettleScanResult{ScanID: uuid.New(), RemainingCredit: 9500, TotalScans: 1}, nil
}

func (s *handlerRepoStub) ListApprovedCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error) {
	return s.approved, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
func (nopPublisher) Close()                                                     {}

func newTestServer(repo store.Repository, internalKey string) http.Handler {
	service := app.NewService(repo, nopPublisher{}, nil, app.ServiceSettings{
		FallbackRedirectURL: "https://adreach.app",
	})
	return NewRouter(NewRewardHandlers(service), internalKey)
}

func testCampaign(distributorID uuid.UUID) *domain.Campaign {
	return &domain.Campaign{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		DistributorID:  &distributorID,
		TargetURL:      "https://example.com/product",
		Budget:         10000,
		CostPerScan:    500,
		CampaignCredit: 10000,
		MaxScans:       20,
		Status:         domain.CampaignStatusLive,
	}
}

func TestHandleRecordScanAccepted(t *testing.T) {
	distributorID := uuid.New()
	repo := &handlerRepoStub{
		distributor: &domain.User{ID: distributorID, Role: domain.RoleDistributor, IsActive: true},
		campaign:    testCampaign(distributorID),
	}
	server := newTestServer(repo, "test-key")

	body, _ := json.Marshal(map[string]string{
		"distributor_id": distributorID.String(),
		"fingerprint":    "device-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/scans", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.ScanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("expected accepted scan, got %+v", result)
	}
	if result.DistributorShare != 300 || result.PlatformShare != 200 {
		t.Fatalf("unexpected split: %+v", result)
	}
}

func TestHandleRecordScanRejectionIsStillOK(t *testing.T) {
	repo := &handlerRepoStub{} // no distributor
	server := newTestServer(repo, "test-key")

	body, _ := json.Marshal(map[string]string{"distributor_id": uuid.New().String()})
	req := httptest.NewRequest(http.MethodPost, "/scans", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for business rejection, got %d", rec.Code)
	}
	var result domain.ScanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Accepted || result.Reason != domain.ReasonInvalidDistributor {
		t.Fatalf("expected invalid_distributor rejection, got %+v", result)
	}
}

func TestHandleRecordScanInvalidBody(t *testing.T) {
	server := newTestServer(&handlerRepoStub{}, "test-key")

	req := httptest.NewRequest(http.MethodPost, "/scans", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleScanRedirectToCampaignTarget(t *testing.T) {
	distributorID := uuid.New()
	campaign := testCampaign(distributorID)
	repo := &handlerRepoStub{
		distributor: &domain.User{ID: distributorID, Role: domain.RoleDistributor, IsActive: true},
		campaign:    campaign,
	}
	server := newTestServer(repo, "test-key")

	req := httptest.NewRequest(http.MethodGet, "/s/"+distributorID.String(), nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != campaign.TargetURL {
		t.Fatalf("expected redirect to %q, got %q", campaign.TargetURL, location)
	}
}

func TestHandleScanRedirectFallsBackWhenRejected(t *testing.T) {
	server := newTestServer(&handlerRepoStub{}, "test-key")

	req := httptest.NewRequest(http.MethodGet, "/s/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "https://adreach.app" {
		t.Fatalf("expected fallback redirect, got %q", location)
	}
}

func TestInternalEndpointsRequireAPIKey(t *testing.T) {
	server := newTestServer(&handlerRepoStub{}, "secret-key")

	req := httptest.NewRequest(http.MethodPost, "/internal/campaigns/activate", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/campaigns/activate", nil)
	req.Header.Set("X-Internal-API-Key", "wrong-key")
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/campaigns/activate", nil)
	req.Header.Set("X-Internal-API-Key", "secret-key")
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleBackfillEarningsRejectsMalformedCampaignID(t *testing.T) {
	server := newTestServer(&handlerRepoStub{}, "secret-key")

	req := httptest.NewRequest(http.MethodPost, "/internal/reconcile/backfill-earnings?campaign_id=not-a-uuid", nil)
	req.Header.Set("X-Internal-API-Key", "secret-key")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&handlerRepoStub{}, "test-key")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
