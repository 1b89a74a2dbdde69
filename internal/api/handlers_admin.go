/**
 * @description
 * This file contains the internal HTTP handlers: campaign lifecycle
 * operations and the reconciliation jobs. All routes here sit behind the
 * internal API key middleware and are called by the scheduler service or by
 * operators.
 */

package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// HandleApproveCampaign processes POST /internal/campaigns/{campaignID}/approve.
func (h *RewardHandlers) HandleApproveCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	campaign, err := h.service.ApproveCampaign(r.Context(), campaignID)
	if err != nil {
		log.Printf("level=error component=api endpoint=approve_campaign campaign_id=%s error=%v", campaignID, err)
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// HandleActivateCampaigns processes POST /internal/campaigns/activate.
func (h *RewardHandlers) HandleActivateCampaigns(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ActivateApprovedCampaigns(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=activate_campaigns error=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to activate campaigns")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCompleteExpiredCampaigns processes POST /internal/campaigns/complete-expired.
func (h *RewardHandlers) HandleCompleteExpiredCampaigns(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CompleteExpiredCampaigns(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=complete_campaigns error=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to complete campaigns")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleBackfillEarnings processes POST /internal/reconcile/backfill-earnings.
// Accepts optional campaign_id and dry_run query parameters.
func (h *RewardHandlers) HandleBackfillEarnings(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := optionalCampaignID(w, r)
	if !ok {
		return
	}
	result, err := h.service.BackfillScanEarnings(r.Context(), campaignID, isDryRun(r))
	if err != nil {
		log.Printf("level=error component=api endpoint=backfill_earnings error=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to backfill earnings")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCleanupDuplicates processes POST /internal/reconcile/cleanup-duplicates.
func (h *RewardHandlers) HandleCleanupDuplicates(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CleanupDuplicateEarnings(r.Context(), isDryRun(r))
	if err != nil {
		log.Printf("level=error component=api endpoint=cleanup_duplicates error=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to cleanup duplicate earnings")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRecomputeTotals processes POST /internal/reconcile/recompute-totals.
func (h *RewardHandlers) HandleRecomputeTotals(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := optionalCampaignID(w, r)
	if !ok {
		return
	}
	result, err := h.service.RecomputeCampaignTotals(r.Context(), campaignID)
	if err != nil {
		log.Printf("level=error component=api endpoint=recompute_totals error=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to recompute campaign totals")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleBackfillCostPerScan processes POST /internal/reconcile/backfill-cost-per-scan.
func (h *RewardHandlers) HandleBackfillCostPerScan(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.BackfillCostPerScan(r.Context(), isDryRun(r))
	if err != nil {
		log.Printf("level=error component=api endpoint=backfill_cost_per_scan error=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to backfill cost per scan")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetCampaign processes GET /internal/campaigns/{campaignID}.
func (h *RewardHandlers) HandleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	summary, err := h.service.GetCampaignSummary(r.Context(), campaignID)
	if err != nil {
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleGetVentureShares processes GET /internal/users/{userID}/venture-shares.
func (h *RewardHandlers) HandleGetVentureShares(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	balance, err := h.service.GetVentureShareBalance(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load venture share balance")
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func isDryRun(r *http.Request) bool {
	return r.URL.Query().Get("dry_run") == "true"
}

// optionalCampaignID parses the campaign_id query parameter when present.
// Returns ok=false after writing an error response for a malformed id.
func optionalCampaignID(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get("campaign_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign_id")
		return nil, false
	}
	return &id, true
}
