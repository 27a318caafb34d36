package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"corpgate/internal/caching"
	"corpgate/internal/entitlement"
	"corpgate/internal/models"
	"corpgate/internal/repositories"

	"github.com/google/uuid"
)

// EntitlementService is the single entry point every caller uses for access
// decisions: the API layer, the UI banner endpoint, and the background sweep.
// It takes immutable snapshots through the repositories, runs the pure
// engine, claims each pending notification with the conditional write-back,
// and dispatches only the claims it won.
type EntitlementService interface {
	// Evaluate returns the tenant's decision, served from cache when fresh.
	Evaluate(ctx context.Context, tenantID uuid.UUID) (*entitlement.Decision, error)
	// Refresh recomputes the decision, bypassing the cache. Used by the sweep.
	Refresh(ctx context.Context, tenantID uuid.UUID) (*entitlement.Decision, error)
	// SetupStatus returns only the provisioning readiness of the tenant.
	SetupStatus(ctx context.Context, tenantID uuid.UUID) (*entitlement.SetupStatus, error)
}

type entitlementService struct {
	tenantRepo  repositories.TenantRepository
	countryRepo repositories.CountryRepository
	branchRepo  repositories.BranchRepository
	userRepo    repositories.UserRepository
	licenseRepo repositories.LicenseRepository
	notifier    LicenseNotifier
	cacheSvc    caching.CacheService
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewEntitlementService(
	tenantRepo repositories.TenantRepository,
	countryRepo repositories.CountryRepository,
	branchRepo repositories.BranchRepository,
	userRepo repositories.UserRepository,
	licenseRepo repositories.LicenseRepository,
	notifier LicenseNotifier,
	cacheSvc caching.CacheService,
	cacheTTL time.Duration,
) EntitlementService {
	return &entitlementService{
		tenantRepo:  tenantRepo,
		countryRepo: countryRepo,
		branchRepo:  branchRepo,
		userRepo:    userRepo,
		licenseRepo: licenseRepo,
		notifier:    notifier,
		cacheSvc:    cacheSvc,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

func (s *entitlementService) Evaluate(ctx context.Context, tenantID uuid.UUID) (*entitlement.Decision, error) {
	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetDecision(ctx, tenantID)
		if err != nil {
			log.Printf("Failed to read cached decision for tenant %s: %v", tenantID.String(), err)
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.Refresh(ctx, tenantID)
}

func (s *entitlementService) Refresh(ctx context.Context, tenantID uuid.UUID) (*entitlement.Decision, error) {
	tenant, setup, err := s.loadSetup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	license, err := s.licenseRepo.GetCurrentByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current license: %v", err)
	}

	state, err := entitlement.EvaluateLicense(license, s.now())
	if err != nil {
		// Data-integrity fault: fail fast rather than emit a wrong decision.
		return nil, err
	}

	decision := entitlement.Decide(setup, state, license)

	s.dispatchNotifications(ctx, tenant, license, decision.Events)

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetDecision(ctx, tenantID, &decision, s.cacheTTL); err != nil {
			log.Printf("Failed to cache decision for tenant %s: %v", tenantID.String(), err)
		}
	}

	return &decision, nil
}

func (s *entitlementService) SetupStatus(ctx context.Context, tenantID uuid.UUID) (*entitlement.SetupStatus, error) {
	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetSetupStatus(ctx, tenantID)
		if err != nil {
			log.Printf("Failed to read cached setup status for tenant %s: %v", tenantID.String(), err)
		} else if cached != nil {
			return cached, nil
		}
	}

	_, setup, err := s.loadSetup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetSetupStatus(ctx, tenantID, &setup, s.cacheTTL); err != nil {
			log.Printf("Failed to cache setup status for tenant %s: %v", tenantID.String(), err)
		}
	}

	return &setup, nil
}

// loadSetup snapshots the tenant and its child collections and evaluates
// provisioning completeness over the snapshot.
func (s *entitlementService) loadSetup(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, entitlement.SetupStatus, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, entitlement.SetupStatus{}, fmt.Errorf("failed to load tenant: %v", err)
	}

	countries, err := s.countryRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, entitlement.SetupStatus{}, fmt.Errorf("failed to load countries: %v", err)
	}

	branches, err := s.branchRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, entitlement.SetupStatus{}, fmt.Errorf("failed to load branches: %v", err)
	}

	users, err := s.userRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, entitlement.SetupStatus{}, fmt.Errorf("failed to load users: %v", err)
	}

	return tenant, entitlement.EvaluateSetup(tenant, countries, branches, users), nil
}

// dispatchNotifications claims each pending threshold with the atomic
// set-if-false write-back and notifies only on a won claim. A lost claim
// means a concurrent evaluation or an earlier sweep already sent it. Claim
// failures are logged and left for the next sweep; the engine recomputes the
// same events until the flag is persisted.
func (s *entitlementService) dispatchNotifications(ctx context.Context, tenant *models.Tenant, license *models.License, events []entitlement.NotificationEvent) {
	if license == nil || len(events) == 0 {
		return
	}

	for _, event := range events {
		won, err := s.licenseRepo.MarkNotificationSent(ctx, event.LicenseID, event.Threshold)
		if err != nil {
			log.Printf("Failed to claim %s notification for license %s: %v", event.Threshold, event.LicenseID.String(), err)
			continue
		}
		if !won {
			continue
		}

		if err := s.notifier.NotifyThreshold(ctx, tenant, license, event.Threshold); err != nil {
			log.Printf("Failed to send %s notification for license %s: %v", event.Threshold, event.LicenseID.String(), err)
		}
	}
}
