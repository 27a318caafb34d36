package services

import (
	"context"
	"errors"
	"strings"

	"corpgate/internal/models"
	"corpgate/internal/repositories"

	"github.com/google/uuid"
)

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByCode(ctx context.Context, code string) (*models.Tenant, error)
	Update(ctx context.Context, req *UpdateTenantRequest) error
	CompleteSettings(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

type CreateTenantRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

type UpdateTenantRequest struct {
	ID               uuid.UUID
	Name             string `json:"name" validate:"required"`
	Code             string `json:"code" validate:"required"`
	Status           string `json:"status" validate:"required"`
	SettingsComplete bool   `json:"settings_complete"`
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" || req.Code == "" {
		return nil, errors.New("name and code are required")
	}
	if strings.ContainsAny(req.Code, " \t") {
		return nil, errors.New("code cannot contain spaces")
	}

	tenant := &models.Tenant{
		ID:     uuid.New(),
		Name:   req.Name,
		Code:   req.Code,
		Status: models.TenantStatusActive,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	if code == "" {
		return nil, errors.New("code is required")
	}
	return s.tenantRepo.GetByCode(ctx, code)
}

func (s *tenantService) Update(ctx context.Context, req *UpdateTenantRequest) error {
	existing, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Code = req.Code
	existing.Status = req.Status
	existing.SettingsComplete = req.SettingsComplete

	return s.tenantRepo.Update(ctx, existing)
}

// CompleteSettings marks the settings provisioning step done. The flag feeds
// the setup completeness evaluation; it never resets on its own.
func (s *tenantService) CompleteSettings(ctx context.Context, id uuid.UUID) error {
	existing, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	existing.SettingsComplete = true
	return s.tenantRepo.Update(ctx, existing)
}

func (s *tenantService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.tenantRepo.Deactivate(ctx, id)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenantRepo.List(ctx, limit, offset)
}
