package services

import (
	"context"
	"errors"
	"testing"

	"corpgate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TenantServiceTestSuite struct {
	suite.Suite
	mockRepo *MockTenantRepository
	service  TenantService
	ctx      context.Context
}

func (suite *TenantServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockTenantRepository{}
	suite.service = NewTenantService(suite.mockRepo)
	suite.ctx = context.Background()

	suite.mockRepo.Test(suite.T())
}

func (suite *TenantServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestTenantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

func (suite *TenantServiceTestSuite) TestCreate_Success() {
	req := &CreateTenantRequest{Name: "Acme Agro", Code: "acme"}

	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil).Run(func(args mock.Arguments) {
		tenant := args.Get(1).(*models.Tenant)
		assert.Equal(suite.T(), req.Name, tenant.Name)
		assert.Equal(suite.T(), req.Code, tenant.Code)
		assert.Equal(suite.T(), models.TenantStatusActive, tenant.Status)
		assert.False(suite.T(), tenant.SettingsComplete)
		assert.NotEqual(suite.T(), uuid.Nil, tenant.ID)
	})

	tenant, err := suite.service.Create(suite.ctx, req)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), tenant)
}

func (suite *TenantServiceTestSuite) TestCreate_ValidationErrors() {
	cases := []struct {
		name string
		req  *CreateTenantRequest
		msg  string
	}{
		{"empty name", &CreateTenantRequest{Name: "", Code: "acme"}, "name and code are required"},
		{"empty code", &CreateTenantRequest{Name: "Acme", Code: ""}, "name and code are required"},
		{"code with spaces", &CreateTenantRequest{Name: "Acme", Code: "ac me"}, "code cannot contain spaces"},
	}

	for _, tc := range cases {
		tenant, err := suite.service.Create(suite.ctx, tc.req)
		assert.Error(suite.T(), err, tc.name)
		assert.Nil(suite.T(), tenant, tc.name)
		assert.Contains(suite.T(), err.Error(), tc.msg, tc.name)
	}
}

func (suite *TenantServiceTestSuite) TestCreate_DuplicateCode() {
	req := &CreateTenantRequest{Name: "Acme Agro", Code: "acme"}

	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Tenant")).
		Return(errors.New("duplicate key value violates unique constraint \"tenants_code_key\""))

	tenant, err := suite.service.Create(suite.ctx, req)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), tenant)
	assert.Contains(suite.T(), err.Error(), "unique constraint")
}

func (suite *TenantServiceTestSuite) TestGetByCode_EmptyCode() {
	tenant, err := suite.service.GetByCode(suite.ctx, "")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), tenant)
}

func (suite *TenantServiceTestSuite) TestCompleteSettings() {
	tenantID := uuid.New()
	existing := &models.Tenant{
		ID:     tenantID,
		Name:   "Acme Agro",
		Code:   "acme",
		Status: models.TenantStatusActive,
	}

	suite.mockRepo.On("GetByID", suite.ctx, tenantID).Return(existing, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil).Run(func(args mock.Arguments) {
		tenant := args.Get(1).(*models.Tenant)
		assert.True(suite.T(), tenant.SettingsComplete)
	})

	err := suite.service.CompleteSettings(suite.ctx, tenantID)
	assert.NoError(suite.T(), err)
}

func (suite *TenantServiceTestSuite) TestUpdate_TenantNotFound() {
	tenantID := uuid.New()
	req := &UpdateTenantRequest{ID: tenantID, Name: "Acme", Code: "acme", Status: models.TenantStatusActive}

	suite.mockRepo.On("GetByID", suite.ctx, tenantID).Return(nil, errors.New("tenant not found"))

	err := suite.service.Update(suite.ctx, req)
	assert.Error(suite.T(), err)
}

func (suite *TenantServiceTestSuite) TestDeactivate_SoftDelete() {
	tenantID := uuid.New()

	suite.mockRepo.On("Deactivate", suite.ctx, tenantID).Return(nil)

	err := suite.service.Deactivate(suite.ctx, tenantID)
	assert.NoError(suite.T(), err)
}

func (suite *TenantServiceTestSuite) TestList_DefaultLimits() {
	suite.mockRepo.On("List", suite.ctx, 10, 0).Return([]*models.Tenant{}, nil)

	tenants, err := suite.service.List(suite.ctx, 0, -5)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), tenants)
}
