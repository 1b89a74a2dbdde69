/**
 * @description
 * This file defines sentinel errors for the store layer. Handlers and the
 * service layer match these with errors.Is to translate persistence outcomes
 * into business rejections or HTTP statuses without inspecting driver errors.
 */

package store

import "errors"

var (
	// ErrDistributorNotFound indicates the scan names a user that does not
	// exist, is inactive, or is not a distributor.
	ErrDistributorNotFound = errors.New("distributor not found or not eligible")

	// ErrNoEligibleCampaign indicates no campaign in a scan-eligible status is
	// assigned to the distributor.
	ErrNoEligibleCampaign = errors.New("no eligible campaign for distributor")

	// ErrCampaignNotFound indicates the referenced campaign does not exist or
	// does not belong to the distributor.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrBudgetExhausted indicates the campaign cannot afford another scan,
	// either by credit or by scan-count cap.
	ErrBudgetExhausted = errors.New("campaign budget exhausted")

	// ErrDuplicateScan indicates the same fingerprint already scanned this
	// campaign within the cooldown window.
	ErrDuplicateScan = errors.New("duplicate scan")

	// ErrEarningExists indicates an earning row already covers the scan and
	// payee, so a backfill insert was skipped.
	ErrEarningExists = errors.New("earning already recorded for scan")

	// ErrInvalidStatusTransition indicates a lifecycle operation attempted an
	// illegal campaign state change.
	ErrInvalidStatusTransition = errors.New("invalid campaign status transition")
)
