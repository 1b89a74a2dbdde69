/**
 * @description
 * This file provides the concrete PostgreSQL implementation of the Repository
 * interface using the pgx driver. All financial mutations run inside explicit
 * transactions with row locks on the campaign so concurrent scans serialize on
 * the budget they compete for.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver and toolkit.
 * - github.com/jackc/pgx/v5/pgxpool: For connection pooling.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adreach/reward-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is the pgx-backed implementation of Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const campaignColumns = `id, client_id, distributor_id, name, objective, country_code,
	has_explainer_video, target_url, budget, cost_per_scan, spent_amount,
	campaign_credit, max_scans, total_scans, status, completed_at, created_at, updated_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.ClientID, &c.DistributorID, &c.Name, &c.Objective, &c.CountryCode,
		&c.HasExplainerVideo, &c.TargetURL, &c.Budget, &c.CostPerScan, &c.SpentAmount,
		&c.CampaignCredit, &c.MaxScans, &c.TotalScans, &c.Status, &c.CompletedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetDistributor returns the user when it exists, is active and has the
// distributor role.
func (r *PostgresRepository) GetDistributor(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, role, email, is_active, created_at FROM users WHERE id = $1`
	var u domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Role, &u.Email, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDistributorNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.Role != domain.RoleDistributor || !u.IsActive {
		return nil, ErrDistributorNotFound
	}
	return &u, nil
}

// GetCampaignByID fetches a campaign by its primary key.
func (r *PostgresRepository) GetCampaignByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1`, campaignColumns)
	c, err := scanCampaign(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// GetEligibleCampaign resolves the earliest-created scan-eligible campaign
// assigned to the distributor. Eligibility includes budget and scan-count
// headroom, so a drifted exhausted-but-still-open campaign never shadows a
// later one that can still pay. Ordering by created_at with the id as a tie
// breaker keeps the selection deterministic. When every assignment is
// completed or out of headroom the distributor's budgets are spent, which is
// ErrBudgetExhausted rather than ErrNoEligibleCampaign.
func (r *PostgresRepository) GetEligibleCampaign(ctx context.Context, distributorID uuid.UUID) (*domain.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM campaigns
		WHERE distributor_id = $1
		  AND status IN ('approved', 'active', 'live')
		  AND cost_per_scan > 0
		  AND campaign_credit >= cost_per_scan
		  AND total_scans < max_scans
		ORDER BY created_at ASC, id ASC
		LIMIT 1`, campaignColumns)
	c, err := scanCampaign(r.db.QueryRow(ctx, query, distributorID))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to resolve eligible campaign: %w", err)
	}

	var assigned int
	existsQuery := `
		SELECT COUNT(*) FROM campaigns
		WHERE distributor_id = $1
		  AND status IN ('approved', 'active', 'live', 'completed')`
	if err := r.db.QueryRow(ctx, existsQuery, distributorID).Scan(&assigned); err != nil {
		return nil, fmt.Errorf("failed to check campaign assignments: %w", err)
	}
	if assigned > 0 {
		return nil, ErrBudgetExhausted
	}
	return nil, ErrNoEligibleCampaign
}

// GetCampaignForDistributor fetches a campaign and verifies the assignment.
func (r *PostgresRepository) GetCampaignForDistributor(ctx context.Context, campaignID, distributorID uuid.UUID) (*domain.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1 AND distributor_id = $2`, campaignColumns)
	c, err := scanCampaign(r.db.QueryRow(ctx, query, campaignID, distributorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign for distributor: %w", err)
	}
	return c, nil
}

// GetReferringAgent resolves the earliest agent-to-distributor referral edge.
func (r *PostgresRepository) GetReferringAgent(ctx context.Context, distributorID uuid.UUID) (*uuid.UUID, error) {
	query := `
		SELECT referrer_id FROM referrals
		WHERE referred_id = $1 AND type = 'da_to_dcd'
		ORDER BY created_at ASC, id ASC
		LIMIT 1`
	var agentID uuid.UUID
	err := r.db.QueryRow(ctx, query, distributorID).Scan(&agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve referring agent: %w", err)
	}
	return &agentID, nil
}

// SettleScanAtomic performs the full scan settlement in one transaction. The
// campaign row lock is the serialization point: every concurrent scan against
// the same campaign queues here, re-reads the live counters, and either claims
// one unit of budget or is rejected.
func (r *PostgresRepository) SettleScanAtomic(ctx context.Context, params SettleScanParams) (*SettleScanResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin scan settlement transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		status      domain.CampaignStatus
		costPerScan int64
		budget      int64
		spent       int64
		credit      int64
		totalScans  int
		maxScans    int
	)
	lockQuery := `
		SELECT status, cost_per_scan, budget, spent_amount, campaign_credit, total_scans, max_scans
		FROM campaigns
		WHERE id = $1
		FOR UPDATE`
	err = tx.QueryRow(ctx, lockQuery, params.CampaignID).Scan(
		&status, &costPerScan, &budget, &spent, &credit, &totalScans, &maxScans,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to lock campaign for settlement: %w", err)
	}

	if costPerScan <= 0 {
		return nil, fmt.Errorf("campaign %s has no frozen cost_per_scan", params.CampaignID)
	}
	if err := settlementGate(status, costPerScan, credit, totalScans, maxScans); err != nil {
		return nil, err
	}

	// Fingerprint cooldown. The check runs under the campaign lock so two
	// concurrent scans with the same fingerprint cannot both pass it.
	if params.Fingerprint != "" && params.DuplicateWindow > 0 {
		var dupCount int
		dupQuery := `
			SELECT COUNT(*) FROM scans
			WHERE campaign_id = $1 AND fingerprint = $2 AND scanned_at > $3`
		cutoff := duplicateCutoff(params.ScannedAt, params.DuplicateWindow)
		if err := tx.QueryRow(ctx, dupQuery, params.CampaignID, params.Fingerprint, cutoff).Scan(&dupCount); err != nil {
			return nil, fmt.Errorf("failed to check for duplicate scan: %w", err)
		}
		if dupCount > 0 {
			return nil, ErrDuplicateScan
		}
	}

	scanID := uuid.New()
	insertScan := `
		INSERT INTO scans (id, campaign_id, distributor_id, cost_per_scan, fingerprint, ip_address, user_agent, scanned_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`
	_, err = tx.Exec(ctx, insertScan,
		scanID, params.CampaignID, params.DistributorID, costPerScan,
		params.Fingerprint, params.IPAddress, params.UserAgent, params.ScannedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}

	// The scan row carries the full cost so the earnings ledger reconciles
	// with spent_amount; the distributor's payable share is the commission.
	insertEarning := `
		INSERT INTO earnings (id, scan_id, campaign_id, payee_id, type, amount, commission_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NOW())`
	_, err = tx.Exec(ctx, insertEarning,
		uuid.New(), scanID, params.CampaignID, params.DistributorID,
		domain.EarningTypeScan, costPerScan, params.DistributorShare,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan earning: %w", err)
	}

	if params.AgentID != nil && params.AgentShare > 0 {
		_, err = tx.Exec(ctx, insertEarning,
			uuid.New(), scanID, params.CampaignID, *params.AgentID,
			domain.EarningTypeCommission, params.AgentShare, params.AgentShare,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert commission earning: %w", err)
		}
	}

	newSpent := spent + costPerScan
	newCredit := budget - newSpent
	newTotal := totalScans + 1
	completed := newCredit < costPerScan || newTotal >= maxScans

	if completed {
		updateQuery := `
			UPDATE campaigns
			SET spent_amount = $1, campaign_credit = $2, total_scans = $3,
			    status = 'completed', completed_at = NOW(), updated_at = NOW()
			WHERE id = $4`
		_, err = tx.Exec(ctx, updateQuery, newSpent, newCredit, newTotal, params.CampaignID)
	} else {
		updateQuery := `
			UPDATE campaigns
			SET spent_amount = $1, campaign_credit = $2, total_scans = $3, updated_at = NOW()
			WHERE id = $4`
		_, err = tx.Exec(ctx, updateQuery, newSpent, newCredit, newTotal, params.CampaignID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit scan settlement: %w", err)
	}

	return &SettleScanResult{
		ScanID:            scanID,
		RemainingCredit:   newCredit,
		TotalScans:        newTotal,
		CampaignCompleted: completed,
	}, nil
}

// UpdateCampaignStatus applies a lifecycle transition under a row lock so
// concurrent transitions cannot race past the state machine.
func (r *PostgresRepository) UpdateCampaignStatus(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (*domain.Campaign, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin status update transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockQuery := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1 FOR UPDATE`, campaignColumns)
	c, err := scanCampaign(tx.QueryRow(ctx, lockQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to lock campaign for status update: %w", err)
	}
	if !c.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, c.Status, status)
	}

	if status == domain.CampaignStatusCompleted {
		_, err = tx.Exec(ctx,
			`UPDATE campaigns SET status = $1, completed_at = NOW(), updated_at = NOW() WHERE id = $2`,
			status, id)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2`,
			status, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	c.Status = status
	if status == domain.CampaignStatusCompleted && c.CompletedAt == nil {
		now := time.Now()
		c.CompletedAt = &now
	}
	return c, nil
}

// FreezeCampaignPricing stamps the resolved price and derived limits on an
// approved campaign. The guard on cost_per_scan keeps the stamp idempotent.
func (r *PostgresRepository) FreezeCampaignPricing(ctx context.Context, id uuid.UUID, costPerScan int64, maxScans int) (*domain.Campaign, error) {
	query := fmt.Sprintf(`
		UPDATE campaigns
		SET cost_per_scan = $1, max_scans = $2, campaign_credit = budget - spent_amount, updated_at = NOW()
		WHERE id = $3 AND cost_per_scan = 0
		RETURNING %s`, campaignColumns)
	c, err := scanCampaign(r.db.QueryRow(ctx, query, costPerScan, maxScans, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already stamped or missing; return the current row.
			return r.GetCampaignByID(ctx, id)
		}
		return nil, fmt.Errorf("failed to freeze campaign pricing: %w", err)
	}
	return c, nil
}

// ListApprovedCampaigns returns campaigns waiting to be activated.
func (r *PostgresRepository) ListApprovedCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM campaigns
		WHERE status = 'approved'
		ORDER BY created_at ASC
		LIMIT $1`, campaignColumns)
	return r.listCampaigns(ctx, query, limit)
}

// ListExhaustedOpenCampaigns returns scan-eligible campaigns that can no
// longer afford a scan and should be completed.
func (r *PostgresRepository) ListExhaustedOpenCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM campaigns
		WHERE status IN ('approved', 'active', 'live')
		  AND cost_per_scan > 0
		  AND (campaign_credit < cost_per_scan OR total_scans >= max_scans)
		ORDER BY created_at ASC
		LIMIT $1`, campaignColumns)
	return r.listCampaigns(ctx, query, limit)
}

// ListCampaignsMissingCostPerScan returns post-approval campaigns that never
// had their price stamped.
func (r *PostgresRepository) ListCampaignsMissingCostPerScan(ctx context.Context, limit int) ([]domain.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM campaigns
		WHERE status IN ('approved', 'active', 'live', 'completed')
		  AND cost_per_scan = 0
		ORDER BY created_at ASC
		LIMIT $1`, campaignColumns)
	return r.listCampaigns(ctx, query, limit)
}

func (r *PostgresRepository) listCampaigns(ctx context.Context, query string, args ...interface{}) ([]domain.Campaign, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// ListCampaignIDs returns ids of campaigns whose totals can be recomputed.
func (r *PostgresRepository) ListCampaignIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM campaigns
		WHERE status IN ('approved', 'active', 'live', 'completed')
		ORDER BY created_at ASC
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan campaign id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListScansWithoutEarnings finds settled scans with no scan-type earning row.
func (r *PostgresRepository) ListScansWithoutEarnings(ctx context.Context, campaignID *uuid.UUID, limit int) ([]ScanWithoutEarning, error) {
	query := `
		SELECT s.id, s.campaign_id, s.distributor_id, s.cost_per_scan, s.fingerprint,
		       s.scanned_at, s.created_at
		FROM scans s
		LEFT JOIN earnings e ON e.scan_id = s.id AND e.type = 'scan'
		WHERE e.id IS NULL
		  AND ($1::uuid IS NULL OR s.campaign_id = $1)
		ORDER BY s.created_at ASC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans without earnings: %w", err)
	}
	defer rows.Close()

	var out []ScanWithoutEarning
	for rows.Next() {
		var item ScanWithoutEarning
		err := rows.Scan(
			&item.Scan.ID, &item.Scan.CampaignID, &item.Scan.DistributorID,
			&item.Scan.CostPerScan, &item.Scan.Fingerprint,
			&item.Scan.ScannedAt, &item.Scan.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orphan scan row: %w", err)
		}
		item.CostPerScan = item.Scan.CostPerScan
		item.DistributorID = item.Scan.DistributorID
		out = append(out, item)
	}
	return out, rows.Err()
}

// InsertEarningIfAbsent inserts an earning unless one already covers the same
// scan, payee and type. A partial unique index on (scan_id, payee_id, type)
// backs the ON CONFLICT clause.
func (r *PostgresRepository) InsertEarningIfAbsent(ctx context.Context, earning *domain.Earning) error {
	if earning.ID == uuid.Nil {
		earning.ID = uuid.New()
	}
	query := `
		INSERT INTO earnings (id, scan_id, campaign_id, payee_id, type, amount, commission_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (scan_id, payee_id, type) DO NOTHING`
	tag, err := r.db.Exec(ctx, query,
		earning.ID, earning.ScanID, earning.CampaignID, earning.PayeeID,
		earning.Type, earning.Amount, earning.CommissionAmount, earning.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert earning: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEarningExists
	}
	return nil
}

// ListDuplicateEarnings finds groups of earning rows double-crediting the same
// scan, payee and type, oldest row first within each group.
func (r *PostgresRepository) ListDuplicateEarnings(ctx context.Context, limit int) ([]DuplicateEarningGroup, error) {
	query := `
		SELECT scan_id, campaign_id, payee_id, type, array_agg(id ORDER BY created_at ASC, id ASC)
		FROM earnings
		GROUP BY scan_id, campaign_id, payee_id, type
		HAVING COUNT(*) > 1
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate earnings: %w", err)
	}
	defer rows.Close()

	var groups []DuplicateEarningGroup
	for rows.Next() {
		var g DuplicateEarningGroup
		if err := rows.Scan(&g.ScanID, &g.CampaignID, &g.PayeeID, &g.Type, &g.IDs); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate earning group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// DeleteEarnings removes earning rows by id.
func (r *PostgresRepository) DeleteEarnings(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM earnings WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete earnings: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RecomputeCampaignTotals rebuilds the campaign counters from the scan-type
// earning rows under a row lock. The ledger wins over whatever the counters
// currently say.
func (r *PostgresRepository) RecomputeCampaignTotals(ctx context.Context, campaignID uuid.UUID) (*domain.CampaignTotals, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin totals transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var budget int64
	err = tx.QueryRow(ctx, `SELECT budget FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID).Scan(&budget)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to lock campaign for totals: %w", err)
	}

	var ledgerSpent int64
	var ledgerScans int
	ledgerQuery := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM earnings
		WHERE campaign_id = $1 AND type = 'scan'`
	if err := tx.QueryRow(ctx, ledgerQuery, campaignID).Scan(&ledgerSpent, &ledgerScans); err != nil {
		return nil, fmt.Errorf("failed to sum earnings ledger: %w", err)
	}

	credit := budget - ledgerSpent
	_, err = tx.Exec(ctx, `
		UPDATE campaigns
		SET spent_amount = $1, campaign_credit = $2, total_scans = $3, updated_at = NOW()
		WHERE id = $4`,
		ledgerSpent, credit, ledgerScans, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to write recomputed totals: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recomputed totals: %w", err)
	}

	return &domain.CampaignTotals{
		CampaignID:     campaignID,
		SpentAmount:    ledgerSpent,
		CampaignCredit: credit,
		TotalScans:     ledgerScans,
	}, nil
}

// GetCampaignSummary returns the campaign next to its ledger-derived totals.
func (r *PostgresRepository) GetCampaignSummary(ctx context.Context, id uuid.UUID) (*domain.CampaignSummary, error) {
	c, err := r.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := &domain.CampaignSummary{Campaign: *c}
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'scan'), 0),
			COUNT(*) FILTER (WHERE type = 'scan'),
			COUNT(*)
		FROM earnings
		WHERE campaign_id = $1`
	err = r.db.QueryRow(ctx, query, id).Scan(&summary.LedgerAmount, &summary.LedgerScans, &summary.EarningsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize campaign earnings: %w", err)
	}
	return summary, nil
}

// GrantVentureShares appends a venture share grant.
func (r *PostgresRepository) GrantVentureShares(ctx context.Context, grant *domain.VentureShare) error {
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	query := `
		INSERT INTO venture_shares (id, user_id, action, units, value, subject_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, action, subject_id) DO NOTHING`
	tag, err := r.db.Exec(ctx, query,
		grant.ID, grant.UserID, grant.Action, grant.Units, grant.Value, grant.SubjectID,
	)
	if err != nil {
		return fmt.Errorf("failed to grant venture shares: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("level=info component=store msg=\"venture share grant already exists, skipping\" user_id=%s action=%s", grant.UserID, grant.Action)
	}
	return nil
}

// GetVentureShareBalance sums a user's venture share grants.
func (r *PostgresRepository) GetVentureShareBalance(ctx context.Context, userID uuid.UUID) (*domain.VentureShareBalance, error) {
	query := `
		SELECT COALESCE(SUM(units), 0), COALESCE(SUM(value), 0), COUNT(*)
		FROM venture_shares
		WHERE user_id = $1`
	b := &domain.VentureShareBalance{UserID: userID}
	err := r.db.QueryRow(ctx, query, userID).Scan(&b.TotalUnits, &b.TotalValue, &b.GrantCount)
	if err != nil {
		return nil, fmt.Errorf("failed to sum venture shares: %w", err)
	}
	return b, nil
}
