package repositories

import (
	"context"
	"testing"
	"time"

	"corpgate/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type LicenseRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      LicenseRepository
	tenantID  uuid.UUID
	licenseID uuid.UUID
	ctx       context.Context
}

func (suite *LicenseRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewLicenseRepo(mock)
	suite.tenantID = uuid.New()
	suite.licenseID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *LicenseRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestLicenseRepoTestSuite(t *testing.T) {
	suite.Run(t, new(LicenseRepoTestSuite))
}

func (suite *LicenseRepoTestSuite) licenseRow(license *models.License) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "tenant_id", "issued_at", "expires_at", "grace_period_ends",
		"total_duration_days", "is_trial", "revoked", "notifications_sent",
		"created_at", "updated_at",
	}).AddRow(
		license.ID, license.TenantID, license.IssuedAt, license.ExpiresAt, license.GracePeriodEnds,
		license.TotalDurationDays, license.IsTrial, license.Revoked, license.NotificationsSent,
		license.CreatedAt, license.UpdatedAt,
	)
}

func (suite *LicenseRepoTestSuite) sampleLicense() *models.License {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.License{
		ID:                suite.licenseID,
		TenantID:          suite.tenantID,
		IssuedAt:          issued,
		ExpiresAt:         issued.AddDate(1, 0, 0),
		GracePeriodEnds:   issued.AddDate(1, 0, 14),
		TotalDurationDays: 365,
		NotificationsSent: models.NotificationFlags{},
		CreatedAt:         issued,
		UpdatedAt:         issued,
	}
}

func (suite *LicenseRepoTestSuite) TestCreate_Success() {
	license := suite.sampleLicense()

	suite.mock.ExpectExec("INSERT INTO licenses").
		WithArgs(license.ID, license.TenantID, license.IssuedAt, license.ExpiresAt, license.GracePeriodEnds,
			license.TotalDurationDays, license.IsTrial, license.Revoked, license.NotificationsSent).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, license)
	assert.NoError(suite.T(), err)
}

func (suite *LicenseRepoTestSuite) TestGetCurrentByTenant_Found() {
	license := suite.sampleLicense()

	suite.mock.ExpectQuery("SELECT (.+) FROM licenses").
		WithArgs(suite.tenantID).
		WillReturnRows(suite.licenseRow(license))

	got, err := suite.repo.GetCurrentByTenant(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), license.ID, got.ID)
	assert.Equal(suite.T(), license.ExpiresAt, got.ExpiresAt)
}

func (suite *LicenseRepoTestSuite) TestGetCurrentByTenant_NoLicense() {
	suite.mock.ExpectQuery("SELECT (.+) FROM licenses").
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := suite.repo.GetCurrentByTenant(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), got)
}

func (suite *LicenseRepoTestSuite) TestRevoke() {
	suite.mock.ExpectExec("UPDATE licenses SET revoked").
		WithArgs(suite.tenantID, suite.licenseID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Revoke(suite.ctx, suite.tenantID, suite.licenseID)
	assert.NoError(suite.T(), err)
}

func (suite *LicenseRepoTestSuite) TestMarkNotificationSent_Wins() {
	suite.mock.ExpectExec("UPDATE licenses").
		WithArgs(suite.licenseID, models.ThresholdExpiry30).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	won, err := suite.repo.MarkNotificationSent(suite.ctx, suite.licenseID, models.ThresholdExpiry30)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), won)
}

func (suite *LicenseRepoTestSuite) TestMarkNotificationSent_AlreadySent() {
	// Zero rows affected: another evaluation already flipped the flag.
	suite.mock.ExpectExec("UPDATE licenses").
		WithArgs(suite.licenseID, models.ThresholdExpiry7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	won, err := suite.repo.MarkNotificationSent(suite.ctx, suite.licenseID, models.ThresholdExpiry7)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), won)
}

func (suite *LicenseRepoTestSuite) TestListByTenant() {
	license := suite.sampleLicense()

	suite.mock.ExpectQuery("SELECT (.+) FROM licenses").
		WithArgs(suite.tenantID, 10, 0).
		WillReturnRows(suite.licenseRow(license))

	licenses, err := suite.repo.ListByTenant(suite.ctx, suite.tenantID, 10, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), licenses, 1)
	assert.Equal(suite.T(), license.ID, licenses[0].ID)
}
