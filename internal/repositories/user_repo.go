package repositories

import (
	"context"

	"corpgate/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.ProvisionedUser) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ProvisionedUser, error)
	Update(ctx context.Context, user *models.ProvisionedUser) error
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.ProvisionedUser, error)
}

type userRepo struct {
	db Database
}

func NewUserRepo(db Database) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.ProvisionedUser) error {
	query := `
		INSERT INTO provisioned_users (id, tenant_id, email, name, roles, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.TenantID, user.Email, user.Name, user.Roles, user.Active)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ProvisionedUser, error) {
	user := &models.ProvisionedUser{}
	query := `
		SELECT id, tenant_id, email, name, roles, active, created_at, updated_at
		FROM provisioned_users
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&user.ID, &user.TenantID, &user.Email, &user.Name, &user.Roles, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.ProvisionedUser) error {
	query := `
		UPDATE provisioned_users
		SET email = $1, name = $2, roles = $3, active = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, user.Email, user.Name, user.Roles, user.Active, user.TenantID, user.ID)
	return err
}

func (r *userRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE provisioned_users SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *userRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.ProvisionedUser, error) {
	query := `
		SELECT id, tenant_id, email, name, roles, active, created_at, updated_at
		FROM provisioned_users
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.ProvisionedUser
	for rows.Next() {
		user := &models.ProvisionedUser{}
		if err := rows.Scan(&user.ID, &user.TenantID, &user.Email, &user.Name, &user.Roles, &user.Active, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
