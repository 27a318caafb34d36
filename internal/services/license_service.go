package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"corpgate/internal/caching"
	"corpgate/internal/models"
	"corpgate/internal/repositories"

	"github.com/google/uuid"
)

// LicenseService issues and revokes licenses. The lifecycle status itself is
// never stored here; it is recomputed from timestamps by the entitlement
// engine at evaluation time.
type LicenseService interface {
	Issue(ctx context.Context, tenantID uuid.UUID, req *IssueLicenseRequest) (*models.License, error)
	Revoke(ctx context.Context, tenantID, licenseID uuid.UUID) error
	GetCurrent(ctx context.Context, tenantID uuid.UUID) (*models.License, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.License, error)
}

type licenseService struct {
	licenseRepo     repositories.LicenseRepository
	tenantRepo      repositories.TenantRepository
	storageSvc      StorageService
	cacheSvc        caching.CacheService
	gracePeriodDays int
	certBucket      string
}

func NewLicenseService(
	licenseRepo repositories.LicenseRepository,
	tenantRepo repositories.TenantRepository,
	storageSvc StorageService,
	cacheSvc caching.CacheService,
	gracePeriodDays int,
	certBucket string,
) LicenseService {
	return &licenseService{
		licenseRepo:     licenseRepo,
		tenantRepo:      tenantRepo,
		storageSvc:      storageSvc,
		cacheSvc:        cacheSvc,
		gracePeriodDays: gracePeriodDays,
		certBucket:      certBucket,
	}
}

type IssueLicenseRequest struct {
	DurationDays int  `json:"duration_days" validate:"required"`
	IsTrial      bool `json:"is_trial"`
}

func (s *licenseService) Issue(ctx context.Context, tenantID uuid.UUID, req *IssueLicenseRequest) (*models.License, error) {
	if req.DurationDays <= 0 {
		return nil, errors.New("duration_days must be positive")
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %v", err)
	}

	now := time.Now().UTC()
	license := &models.License{
		ID:                uuid.New(),
		TenantID:          tenant.ID,
		IssuedAt:          now,
		ExpiresAt:         now.AddDate(0, 0, req.DurationDays),
		GracePeriodEnds:   now.AddDate(0, 0, req.DurationDays+s.gracePeriodDays),
		TotalDurationDays: req.DurationDays,
		IsTrial:           req.IsTrial,
		NotificationsSent: models.NotificationFlags{},
	}

	if err := s.licenseRepo.Create(ctx, license); err != nil {
		return nil, fmt.Errorf("failed to create license: %v", err)
	}

	// Archive the certificate for audit purposes. Failure is not fatal to
	// issuance: the database record is authoritative.
	if err := s.archiveCertificate(ctx, tenant, license); err != nil {
		log.Printf("Failed to archive license certificate for tenant %s: %v", tenant.ID.String(), err)
	}

	s.invalidate(ctx, tenantID)
	return license, nil
}

func (s *licenseService) Revoke(ctx context.Context, tenantID, licenseID uuid.UUID) error {
	if _, err := s.licenseRepo.GetByID(ctx, tenantID, licenseID); err != nil {
		return fmt.Errorf("license not found: %v", err)
	}

	if err := s.licenseRepo.Revoke(ctx, tenantID, licenseID); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID)
	return nil
}

func (s *licenseService) GetCurrent(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	return s.licenseRepo.GetCurrentByTenant(ctx, tenantID)
}

func (s *licenseService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.License, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.licenseRepo.ListByTenant(ctx, tenantID, limit, offset)
}

func (s *licenseService) archiveCertificate(ctx context.Context, tenant *models.Tenant, license *models.License) error {
	if s.storageSvc == nil {
		return nil
	}

	cert := map[string]interface{}{
		"license_id":        license.ID.String(),
		"tenant_id":         tenant.ID.String(),
		"tenant_code":       tenant.Code,
		"issued_at":         license.IssuedAt,
		"expires_at":        license.ExpiresAt,
		"grace_period_ends": license.GracePeriodEnds,
		"is_trial":          license.IsTrial,
	}

	data, err := json.MarshalIndent(cert, "", "  ")
	if err != nil {
		return err
	}

	objectName := fmt.Sprintf("licenses/%s/%s.json", tenant.ID.String(), license.ID.String())
	return s.storageSvc.UploadObject(ctx, s.certBucket, objectName, bytes.NewReader(data), int64(len(data)), "application/json")
}

func (s *licenseService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.InvalidateTenant(ctx, tenantID); err != nil {
		log.Printf("Failed to invalidate cache for tenant %s: %v", tenantID.String(), err)
	}
}
