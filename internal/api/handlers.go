/**
 * @description
 * This file contains the public HTTP handlers of the reward-service: scan
 * intake and the QR redirect. Business rejections are reported with a 200 and
 * an accepted=false body so scanning clients can distinguish "no reward" from
 * transport failures.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: For routing and URL parameters.
 * - internal/app: The core application service.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/adreach/reward-service/internal/app"
	"github.com/adreach/reward-service/internal/domain"
	"github.com/adreach/reward-service/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RewardHandlers holds dependencies for the HTTP handlers.
type RewardHandlers struct {
	service *app.Service
}

// NewRewardHandlers creates a new RewardHandlers.
func NewRewardHandlers(service *app.Service) *RewardHandlers {
	return &RewardHandlers{service: service}
}

// writeJSON is a helper for writing JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("level=error component=api msg=\"failed to write json response\" error=%v", err)
		}
	}
}

// writeError is a helper for writing a standard JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type recordScanPayload struct {
	DistributorID string `json:"distributor_id"`
	CampaignID    string `json:"campaign_id,omitempty"`
	Fingerprint   string `json:"fingerprint"`
}

// HandleRecordScan processes POST /scans.
func (h *RewardHandlers) HandleRecordScan(w http.ResponseWriter, r *http.Request) {
	var payload recordScanPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	distributorID, err := uuid.Parse(payload.DistributorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid distributor_id")
		return
	}

	req := domain.RecordScanRequest{
		DistributorID: distributorID,
		Fingerprint:   strings.TrimSpace(payload.Fingerprint),
		IPAddress:     clientIP(r),
		UserAgent:     r.UserAgent(),
		ScannedAt:     time.Now().UTC(),
	}
	if payload.CampaignID != "" {
		campaignID, err := uuid.Parse(payload.CampaignID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid campaign_id")
			return
		}
		req.CampaignID = &campaignID
	}

	result, err := h.service.RecordScan(r.Context(), req)
	if err != nil {
		log.Printf("level=error component=api endpoint=record_scan error=%v", err)
		writeJSON(w, http.StatusInternalServerError, domain.ScanResult{
			Accepted: false,
			Reason:   domain.ReasonSystemError,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleScanRedirect processes GET /s/{distributorID}: settle the scan and
// send the scanner to the campaign's target, or to the fallback page when no
// campaign pays.
func (h *RewardHandlers) HandleScanRedirect(w http.ResponseWriter, r *http.Request) {
	distributorID, err := uuid.Parse(chi.URLParam(r, "distributorID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid distributor id")
		return
	}

	req := domain.RecordScanRequest{
		DistributorID: distributorID,
		Fingerprint:   fingerprintFromRequest(r),
		IPAddress:     clientIP(r),
		UserAgent:     r.UserAgent(),
		ScannedAt:     time.Now().UTC(),
	}

	result, err := h.service.RecordScan(r.Context(), req)
	if err != nil {
		log.Printf("level=error component=api endpoint=scan_redirect error=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to process scan")
		return
	}
	if result.RedirectURL == "" {
		writeJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

// HandleHealth reports liveness.
func (h *RewardHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientIP extracts the caller address, preferring the first hop of
// X-Forwarded-For when a proxy sits in front.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// fingerprintFromRequest derives a device fingerprint for the redirect flow,
// where the scanner sends no body. The client hint header wins when present.
func fingerprintFromRequest(r *http.Request) string {
	if fp := strings.TrimSpace(r.Header.Get("X-Device-Fingerprint")); fp != "" {
		return fp
	}
	return clientIP(r) + "|" + r.UserAgent()
}

// storeErrorStatus maps store sentinels to HTTP statuses for admin endpoints.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrCampaignNotFound),
		errors.Is(err, store.ErrDistributorNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidStatusTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
