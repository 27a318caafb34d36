package repositories

import (
	"context"

	"corpgate/internal/models"

	"github.com/google/uuid"
)

type CountryRepository interface {
	Create(ctx context.Context, country *models.Country) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Country, error)
	Update(ctx context.Context, country *models.Country) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Country, error)
}

type countryRepo struct {
	db Database
}

func NewCountryRepo(db Database) CountryRepository {
	return &countryRepo{db: db}
}

func (r *countryRepo) Create(ctx context.Context, country *models.Country) error {
	query := `
		INSERT INTO countries (id, tenant_id, name, code, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, country.ID, country.TenantID, country.Name, country.Code, country.Active)
	return err
}

func (r *countryRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Country, error) {
	country := &models.Country{}
	query := `
		SELECT id, tenant_id, name, code, active, created_at, updated_at
		FROM countries
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&country.ID, &country.TenantID, &country.Name, &country.Code, &country.Active, &country.CreatedAt, &country.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return country, nil
}

func (r *countryRepo) Update(ctx context.Context, country *models.Country) error {
	query := `
		UPDATE countries
		SET name = $1, code = $2, active = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, country.Name, country.Code, country.Active, country.TenantID, country.ID)
	return err
}

func (r *countryRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM countries WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *countryRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Country, error) {
	query := `
		SELECT id, tenant_id, name, code, active, created_at, updated_at
		FROM countries
		WHERE tenant_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []*models.Country
	for rows.Next() {
		country := &models.Country{}
		if err := rows.Scan(&country.ID, &country.TenantID, &country.Name, &country.Code, &country.Active, &country.CreatedAt, &country.UpdatedAt); err != nil {
			return nil, err
		}
		countries = append(countries, country)
	}
	return countries, rows.Err()
}
