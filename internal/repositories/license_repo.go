package repositories

import (
	"context"
	"errors"

	"corpgate/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LicenseRepository interface {
	Create(ctx context.Context, license *models.License) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.License, error)
	// GetCurrentByTenant returns the license that is authoritative for
	// entitlement: the most recently issued non-revoked one, falling back to
	// the most recently issued revoked one so revocation surfaces as blocked
	// rather than none. Returns nil when the tenant holds no licenses at all.
	GetCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.License, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.License, error)
	Revoke(ctx context.Context, tenantID, id uuid.UUID) error
	// MarkNotificationSent atomically flips notifications_sent[threshold] from
	// false to true. Returns true when this call won the flip; false when the
	// flag was already set, so concurrent evaluations and retried sweeps never
	// double-send.
	MarkNotificationSent(ctx context.Context, id uuid.UUID, threshold string) (bool, error)
}

type licenseRepo struct {
	db Database
}

func NewLicenseRepo(db Database) LicenseRepository {
	return &licenseRepo{db: db}
}

const licenseColumns = `id, tenant_id, issued_at, expires_at, grace_period_ends, total_duration_days, is_trial, revoked, notifications_sent, created_at, updated_at`

func (r *licenseRepo) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (id, tenant_id, issued_at, expires_at, grace_period_ends, total_duration_days, is_trial, revoked, notifications_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		license.ID, license.TenantID, license.IssuedAt, license.ExpiresAt, license.GracePeriodEnds,
		license.TotalDurationDays, license.IsTrial, license.Revoked, license.NotificationsSent)
	return err
}

func (r *licenseRepo) scanOne(row pgx.Row) (*models.License, error) {
	license := &models.License{}
	err := row.Scan(&license.ID, &license.TenantID, &license.IssuedAt, &license.ExpiresAt,
		&license.GracePeriodEnds, &license.TotalDurationDays, &license.IsTrial, &license.Revoked,
		&license.NotificationsSent, &license.CreatedAt, &license.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return license, nil
}

func (r *licenseRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanOne(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *licenseRepo) GetCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE tenant_id = $1
		ORDER BY revoked ASC, issued_at DESC
		LIMIT 1
	`
	license, err := r.scanOne(r.db.QueryRow(ctx, query, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		// No license on file is a legitimate state, not an error.
		return nil, nil
	}
	return license, err
}

func (r *licenseRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE tenant_id = $1
		ORDER BY issued_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		license := &models.License{}
		if err := rows.Scan(&license.ID, &license.TenantID, &license.IssuedAt, &license.ExpiresAt,
			&license.GracePeriodEnds, &license.TotalDurationDays, &license.IsTrial, &license.Revoked,
			&license.NotificationsSent, &license.CreatedAt, &license.UpdatedAt); err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}
	return licenses, rows.Err()
}

func (r *licenseRepo) Revoke(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE licenses SET revoked = TRUE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *licenseRepo) MarkNotificationSent(ctx context.Context, id uuid.UUID, threshold string) (bool, error) {
	// Conditional set-if-false: the WHERE clause loses the race when another
	// evaluation already flipped the flag, keeping sends exactly-once even
	// across retries. Flags are monotonic, they are never reset here.
	query := `
		UPDATE licenses
		SET notifications_sent = notifications_sent || jsonb_build_object($2::text, true), updated_at = NOW()
		WHERE id = $1 AND NOT COALESCE((notifications_sent ->> $2)::boolean, FALSE)
	`
	tag, err := r.db.Exec(ctx, query, id, threshold)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
