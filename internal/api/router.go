/**
 * @description
 * This file defines the API routes for the reward-service using chi. Public
 * routes serve scan intake and the QR redirect; internal routes for lifecycle
 * and reconciliation sit behind the internal API key.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The HTTP router.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the main router for the service.
func NewRouter(handlers *RewardHandlers, internalAPIKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", handlers.HandleHealth)

	r.Post("/scans", handlers.HandleRecordScan)
	r.Get("/s/{distributorID}", handlers.HandleScanRedirect)

	r.Route("/internal", func(r chi.Router) {
		r.Use(InternalAuthMiddleware(internalAPIKey))

		r.Post("/campaigns/{campaignID}/approve", handlers.HandleApproveCampaign)
		r.Post("/campaigns/activate", handlers.HandleActivateCampaigns)
		r.Post("/campaigns/complete-expired", handlers.HandleCompleteExpiredCampaigns)
		r.Get("/campaigns/{campaignID}", handlers.HandleGetCampaign)

		r.Post("/reconcile/backfill-earnings", handlers.HandleBackfillEarnings)
		r.Post("/reconcile/cleanup-duplicates", handlers.HandleCleanupDuplicates)
		r.Post("/reconcile/recompute-totals", handlers.HandleRecomputeTotals)
		r.Post("/reconcile/backfill-cost-per-scan", handlers.HandleBackfillCostPerScan)

		r.Get("/users/{userID}/venture-shares", handlers.HandleGetVentureShares)
	})

	return r
}
