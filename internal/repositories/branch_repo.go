package repositories

import (
	"context"

	"corpgate/internal/models"

	"github.com/google/uuid"
)

type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Branch, error)
}

type branchRepo struct {
	db Database
}

func NewBranchRepo(db Database) BranchRepository {
	return &branchRepo{db: db}
}

func (r *branchRepo) Create(ctx context.Context, branch *models.Branch) error {
	query := `
		INSERT INTO branches (id, tenant_id, country_id, name, code, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, branch.ID, branch.TenantID, branch.CountryID, branch.Name, branch.Code, branch.Address, branch.Active)
	return err
}

func (r *branchRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Branch, error) {
	branch := &models.Branch{}
	query := `
		SELECT id, tenant_id, country_id, name, code, address, active, created_at, updated_at
		FROM branches
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&branch.ID, &branch.TenantID, &branch.CountryID, &branch.Name, &branch.Code, &branch.Address, &branch.Active, &branch.CreatedAt, &branch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (r *branchRepo) Update(ctx context.Context, branch *models.Branch) error {
	query := `
		UPDATE branches
		SET country_id = $1, name = $2, code = $3, address = $4, active = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, branch.CountryID, branch.Name, branch.Code, branch.Address, branch.Active, branch.TenantID, branch.ID)
	return err
}

func (r *branchRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM branches WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *branchRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Branch, error) {
	query := `
		SELECT id, tenant_id, country_id, name, code, address, active, created_at, updated_at
		FROM branches
		WHERE tenant_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []*models.Branch
	for rows.Next() {
		branch := &models.Branch{}
		if err := rows.Scan(&branch.ID, &branch.TenantID, &branch.CountryID, &branch.Name, &branch.Code, &branch.Address, &branch.Active, &branch.CreatedAt, &branch.UpdatedAt); err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	return branches, rows.Err()
}
