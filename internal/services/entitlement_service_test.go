package services

import (
	"context"
	"testing"
	"time"

	"corpgate/internal/entitlement"
	"corpgate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type EntitlementServiceTestSuite struct {
	suite.Suite
	tenantRepo  *MockTenantRepository
	countryRepo *MockCountryRepository
	branchRepo  *MockBranchRepository
	userRepo    *MockUserRepository
	licenseRepo *MockLicenseRepository
	notifier    *MockNotifier
	service     EntitlementService
	tenant      *models.Tenant
	ctx         context.Context
}

func (suite *EntitlementServiceTestSuite) SetupTest() {
	suite.tenantRepo = &MockTenantRepository{}
	suite.countryRepo = &MockCountryRepository{}
	suite.branchRepo = &MockBranchRepository{}
	suite.userRepo = &MockUserRepository{}
	suite.licenseRepo = &MockLicenseRepository{}
	suite.notifier = &MockNotifier{}

	suite.service = NewEntitlementService(
		suite.tenantRepo, suite.countryRepo, suite.branchRepo, suite.userRepo,
		suite.licenseRepo, suite.notifier, nil, time.Minute,
	)

	suite.tenant = &models.Tenant{
		ID:               uuid.New(),
		Name:             "Acme Agro",
		Code:             "acme",
		Status:           models.TenantStatusActive,
		SettingsComplete: true,
	}
	suite.ctx = context.Background()
}

func (suite *EntitlementServiceTestSuite) TearDownTest() {
	suite.tenantRepo.AssertExpectations(suite.T())
	suite.countryRepo.AssertExpectations(suite.T())
	suite.branchRepo.AssertExpectations(suite.T())
	suite.userRepo.AssertExpectations(suite.T())
	suite.licenseRepo.AssertExpectations(suite.T())
	suite.notifier.AssertExpectations(suite.T())
}

func TestEntitlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntitlementServiceTestSuite))
}

// freezeClock pins the service's evaluation instant.
func (suite *EntitlementServiceTestSuite) freezeClock(now time.Time) {
	suite.service.(*entitlementService).now = func() time.Time { return now }
}

func (suite *EntitlementServiceTestSuite) expectSnapshot(countries []*models.Country, branches []*models.Branch, users []*models.ProvisionedUser) {
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenant.ID).Return(suite.tenant, nil)
	suite.countryRepo.On("ListByTenant", suite.ctx, suite.tenant.ID).Return(countries, nil)
	suite.branchRepo.On("ListByTenant", suite.ctx, suite.tenant.ID).Return(branches, nil)
	suite.userRepo.On("ListByTenant", suite.ctx, suite.tenant.ID).Return(users, nil)
}

func (suite *EntitlementServiceTestSuite) completeSnapshot() {
	country := &models.Country{ID: uuid.New(), TenantID: suite.tenant.ID, Name: "India", Code: "IN", Active: true}
	branch := &models.Branch{ID: uuid.New(), TenantID: suite.tenant.ID, CountryID: country.ID, Name: "HQ", Code: "HQ1", Active: true}
	user := &models.ProvisionedUser{ID: uuid.New(), TenantID: suite.tenant.ID, Email: "ops@acme.test", Active: true}
	suite.expectSnapshot([]*models.Country{country}, []*models.Branch{branch}, []*models.ProvisionedUser{user})
}

func (suite *EntitlementServiceTestSuite) license(issued time.Time, durationDays, graceDays int) *models.License {
	return &models.License{
		ID:                uuid.New(),
		TenantID:          suite.tenant.ID,
		IssuedAt:          issued,
		ExpiresAt:         issued.AddDate(0, 0, durationDays),
		GracePeriodEnds:   issued.AddDate(0, 0, durationDays+graceDays),
		TotalDurationDays: durationDays,
		NotificationsSent: models.NotificationFlags{},
	}
}

func (suite *EntitlementServiceTestSuite) TestRefresh_ActiveLicenseFiresCrossedThreshold() {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	license := suite.license(issued, 365, 14)
	now := license.ExpiresAt.AddDate(0, 0, -25)
	suite.freezeClock(now)

	suite.completeSnapshot()
	suite.licenseRepo.On("GetCurrentByTenant", suite.ctx, suite.tenant.ID).Return(license, nil)
	suite.licenseRepo.On("MarkNotificationSent", suite.ctx, license.ID, models.ThresholdExpiry30).Return(true, nil)
	suite.notifier.On("NotifyThreshold", suite.ctx, suite.tenant, license, models.ThresholdExpiry30).Return(nil)

	decision, err := suite.service.Refresh(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), decision.AccessGranted)
	assert.Equal(suite.T(), entitlement.StatusActive, decision.License.Status)
	assert.Len(suite.T(), decision.Events, 1)
}

func (suite *EntitlementServiceTestSuite) TestRefresh_LostClaimDoesNotNotify() {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	license := suite.license(issued, 365, 14)
	suite.freezeClock(license.ExpiresAt.AddDate(0, 0, -25))

	suite.completeSnapshot()
	suite.licenseRepo.On("GetCurrentByTenant", suite.ctx, suite.tenant.ID).Return(license, nil)
	// A concurrent evaluation already flipped the flag.
	suite.licenseRepo.On("MarkNotificationSent", suite.ctx, license.ID, models.ThresholdExpiry30).Return(false, nil)

	decision, err := suite.service.Refresh(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), decision.AccessGranted)
	suite.notifier.AssertNotCalled(suite.T(), "NotifyThreshold", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntitlementServiceTestSuite) TestRefresh_CatchUpFiresAllMissedThresholds() {
	// License never evaluated before, now 35 days into a 30-day term.
	issued := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	license := suite.license(issued, 30, 14)
	suite.freezeClock(issued.AddDate(0, 0, 35))

	suite.completeSnapshot()
	suite.licenseRepo.On("GetCurrentByTenant", suite.ctx, suite.tenant.ID).Return(license, nil)

	expected := []string{
		models.ThresholdExpiry30, models.ThresholdExpiry14, models.ThresholdExpiry7,
		models.ThresholdExpiry3, models.ThresholdGracePeriod,
	}
	for _, threshold := range expected {
		suite.licenseRepo.On("MarkNotificationSent", suite.ctx, license.ID, threshold).Return(true, nil).Once()
		suite.notifier.On("NotifyThreshold", suite.ctx, suite.tenant, license, threshold).Return(nil).Once()
	}

	decision, err := suite.service.Refresh(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), entitlement.StatusGrace, decision.License.Status)
	assert.True(suite.T(), decision.AccessGranted)
	assert.Len(suite.T(), decision.Events, len(expected))
}

func (suite *EntitlementServiceTestSuite) TestRefresh_NoLicense() {
	suite.freezeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	suite.completeSnapshot()
	suite.licenseRepo.On("GetCurrentByTenant", suite.ctx, suite.tenant.ID).Return((*models.License)(nil), nil)

	decision, err := suite.service.Refresh(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.AccessGranted)
	assert.Equal(suite.T(), entitlement.StatusNone, decision.License.Status)
	assert.Empty(suite.T(), decision.Events)
	suite.notifier.AssertNotCalled(suite.T(), "NotifyThreshold", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntitlementServiceTestSuite) TestRefresh_RevokedLicenseBlocksWithoutEvents() {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	license := suite.license(issued, 365, 14)
	license.Revoked = true
	suite.freezeClock(issued.AddDate(0, 6, 0))

	suite.completeSnapshot()
	suite.licenseRepo.On("GetCurrentByTenant", suite.ctx, suite.tenant.ID).Return(license, nil)

	decision, err := suite.service.Refresh(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.AccessGranted)
	assert.Equal(suite.T(), entitlement.StatusBlocked, decision.License.Status)
	assert.Empty(suite.T(), decision.Events)
}

func (suite *EntitlementServiceTestSuite) TestRefresh_MalformedLicenseFailsFast() {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	license := suite.license(issued, 365, 14)
	license.GracePeriodEnds = license.ExpiresAt // invariant violation
	suite.freezeClock(issued.AddDate(0, 1, 0))

	suite.completeSnapshot()
	suite.licenseRepo.On("GetCurrentByTenant", suite.ctx, suite.tenant.ID).Return(license, nil)

	decision, err := suite.service.Refresh(suite.ctx, suite.tenant.ID)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), decision)
	var confErr *entitlement.ConfigurationError
	assert.ErrorAs(suite.T(), err, &confErr)
}

func (suite *EntitlementServiceTestSuite) TestRefresh_IncompleteSetupDoesNotGate() {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	license := suite.license(issued, 365, 14)
	suite.freezeClock(issued.AddDate(0, 1, 0))

	// No countries provisioned yet.
	suite.expectSnapshot(nil, nil, []*models.ProvisionedUser{
		{ID: uuid.New(), TenantID: suite.tenant.ID, Email: "ops@acme.test", Active: true},
	})
	suite.licenseRepo.On("GetCurrentByTenant", suite.ctx, suite.tenant.ID).Return(license, nil)

	decision, err := suite.service.Refresh(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), decision.AccessGranted)
	assert.False(suite.T(), decision.Setup.IsComplete)
	assert.Equal(suite.T(), entitlement.StepCountries, decision.Setup.FirstIncompleteStep)
}

func (suite *EntitlementServiceTestSuite) TestSetupStatus_FirstIncompleteStep() {
	country := &models.Country{ID: uuid.New(), TenantID: suite.tenant.ID, Name: "India", Code: "IN", Active: true}
	suite.expectSnapshot([]*models.Country{country}, nil, nil)

	status, err := suite.service.SetupStatus(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), status.CountriesComplete)
	assert.False(suite.T(), status.BranchesComplete)
	assert.Equal(suite.T(), entitlement.StepBranches, status.FirstIncompleteStep)
}

func (suite *EntitlementServiceTestSuite) TestEvaluate_ServesCachedDecision() {
	cache := &MockCacheService{}
	service := NewEntitlementService(
		suite.tenantRepo, suite.countryRepo, suite.branchRepo, suite.userRepo,
		suite.licenseRepo, suite.notifier, cache, time.Minute,
	)

	cached := &entitlement.Decision{AccessGranted: true, Reason: "license active, 90 day(s) until expiry"}
	cache.On("GetDecision", suite.ctx, suite.tenant.ID).Return(cached, nil)

	decision, err := service.Evaluate(suite.ctx, suite.tenant.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, decision)
	cache.AssertExpectations(suite.T())
	// No repository work on a cache hit.
	suite.tenantRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}
