package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"corpgate/internal/caching"
	"corpgate/internal/models"
	"corpgate/internal/repositories"

	"github.com/google/uuid"
)

// ProvisioningService manages the tenant's structural children: countries,
// branches, and provisioned users. Mutations invalidate the tenant's cached
// entitlement and setup state.
type ProvisioningService interface {
	CreateCountry(ctx context.Context, tenantID uuid.UUID, req *CreateCountryRequest) (*models.Country, error)
	ListCountries(ctx context.Context, tenantID uuid.UUID) ([]*models.Country, error)
	DeleteCountry(ctx context.Context, tenantID, countryID uuid.UUID) error

	CreateBranch(ctx context.Context, tenantID uuid.UUID, req *CreateBranchRequest) (*models.Branch, error)
	ListBranches(ctx context.Context, tenantID uuid.UUID) ([]*models.Branch, error)
	DeleteBranch(ctx context.Context, tenantID, branchID uuid.UUID) error

	CreateUser(ctx context.Context, tenantID uuid.UUID, req *CreateUserRequest) (*models.ProvisionedUser, error)
	ListUsers(ctx context.Context, tenantID uuid.UUID) ([]*models.ProvisionedUser, error)
	DeactivateUser(ctx context.Context, tenantID, userID uuid.UUID) error
}

type provisioningService struct {
	countryRepo repositories.CountryRepository
	branchRepo  repositories.BranchRepository
	userRepo    repositories.UserRepository
	cacheSvc    caching.CacheService
}

func NewProvisioningService(
	countryRepo repositories.CountryRepository,
	branchRepo repositories.BranchRepository,
	userRepo repositories.UserRepository,
	cacheSvc caching.CacheService,
) ProvisioningService {
	return &provisioningService{
		countryRepo: countryRepo,
		branchRepo:  branchRepo,
		userRepo:    userRepo,
		cacheSvc:    cacheSvc,
	}
}

type CreateCountryRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

type CreateBranchRequest struct {
	CountryID uuid.UUID `json:"country_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Code      string    `json:"code" validate:"required"`
	Address   string    `json:"address"`
}

type CreateUserRequest struct {
	Email string   `json:"email" validate:"required"`
	Name  string   `json:"name" validate:"required"`
	Roles []string `json:"roles"`
}

func (s *provisioningService) CreateCountry(ctx context.Context, tenantID uuid.UUID, req *CreateCountryRequest) (*models.Country, error) {
	if req.Name == "" || req.Code == "" {
		return nil, errors.New("name and code are required")
	}

	country := &models.Country{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     req.Name,
		Code:     req.Code,
		Active:   true,
	}

	if err := s.countryRepo.Create(ctx, country); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	return country, nil
}

func (s *provisioningService) ListCountries(ctx context.Context, tenantID uuid.UUID) ([]*models.Country, error) {
	return s.countryRepo.ListByTenant(ctx, tenantID)
}

func (s *provisioningService) DeleteCountry(ctx context.Context, tenantID, countryID uuid.UUID) error {
	if err := s.countryRepo.Delete(ctx, tenantID, countryID); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *provisioningService) CreateBranch(ctx context.Context, tenantID uuid.UUID, req *CreateBranchRequest) (*models.Branch, error) {
	if req.Name == "" || req.Code == "" {
		return nil, errors.New("name and code are required")
	}
	if req.CountryID == uuid.Nil {
		return nil, errors.New("country_id is required")
	}

	// A branch must reference a country of the same tenant.
	country, err := s.countryRepo.GetByID(ctx, tenantID, req.CountryID)
	if err != nil {
		return nil, fmt.Errorf("country %s not found for tenant: %v", req.CountryID, err)
	}
	if country.TenantID != tenantID {
		return nil, errors.New("country belongs to a different tenant")
	}

	branch := &models.Branch{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CountryID: req.CountryID,
		Name:      req.Name,
		Code:      req.Code,
		Address:   req.Address,
		Active:    true,
	}

	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	return branch, nil
}

func (s *provisioningService) ListBranches(ctx context.Context, tenantID uuid.UUID) ([]*models.Branch, error) {
	return s.branchRepo.ListByTenant(ctx, tenantID)
}

func (s *provisioningService) DeleteBranch(ctx context.Context, tenantID, branchID uuid.UUID) error {
	if err := s.branchRepo.Delete(ctx, tenantID, branchID); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *provisioningService) CreateUser(ctx context.Context, tenantID uuid.UUID, req *CreateUserRequest) (*models.ProvisionedUser, error) {
	if req.Email == "" || req.Name == "" {
		return nil, errors.New("email and name are required")
	}

	user := &models.ProvisionedUser{
		ID:       uuid.New(),
		TenantID: tenantID,
		Email:    req.Email,
		Name:     req.Name,
		Roles:    req.Roles,
		Active:   true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	return user, nil
}

func (s *provisioningService) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]*models.ProvisionedUser, error) {
	return s.userRepo.ListByTenant(ctx, tenantID)
}

func (s *provisioningService) DeactivateUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	if err := s.userRepo.Deactivate(ctx, tenantID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *provisioningService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.InvalidateTenant(ctx, tenantID); err != nil {
		log.Printf("Failed to invalidate cache for tenant %s: %v", tenantID.String(), err)
	}
}
