package handlers

import (
	"net/http"

	"corpgate/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// ListTenantsRequest represents query parameters for listing tenants
type ListTenantsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListTenants handles getting a list of tenants
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	var req ListTenantsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	tenants, err := h.tenantService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tenants")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

// CreateTenantRequest represents the tenant creation request payload
type CreateTenantRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

// CreateTenant handles registering a new tenant
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Name == "" || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and code are required")
	}

	tenant, err := h.tenantService.Create(c.Request().Context(), &services.CreateTenantRequest{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create tenant")
	}

	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant handles getting tenant details by ID
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	tenant, err := h.tenantService.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	return c.JSON(http.StatusOK, tenant)
}

// GetTenantByCode handles getting tenant details by code
func (h *TenantHandlers) GetTenantByCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant code is required")
	}

	tenant, err := h.tenantService.GetByCode(c.Request().Context(), code)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenantRequest represents the tenant update request payload
type UpdateTenantRequest struct {
	Name   *string `json:"name"`
	Code   *string `json:"code"`
	Status *string `json:"status"`
}

// UpdateTenant handles updating tenant details
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	existing, err := h.tenantService.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	updateReq := &services.UpdateTenantRequest{
		ID:               tenantID,
		Name:             existing.Name,
		Code:             existing.Code,
		Status:           existing.Status,
		SettingsComplete: existing.SettingsComplete,
	}
	if req.Name != nil {
		updateReq.Name = *req.Name
	}
	if req.Code != nil {
		updateReq.Code = *req.Code
	}
	if req.Status != nil {
		updateReq.Status = *req.Status
	}

	if err := h.tenantService.Update(c.Request().Context(), updateReq); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update tenant")
	}

	updated, err := h.tenantService.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Tenant updated but failed to retrieve")
	}

	return c.JSON(http.StatusOK, updated)
}

// CompleteSettings marks the tenant's settings step as finished
func (h *TenantHandlers) CompleteSettings(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	if err := h.tenantService.CompleteSettings(c.Request().Context(), tenantID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to complete settings")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Settings marked complete",
	})
}

// DeactivateTenant handles soft-deactivating a tenant
func (h *TenantHandlers) DeactivateTenant(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	if _, err := h.tenantService.GetByID(c.Request().Context(), tenantID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	if err := h.tenantService.Deactivate(c.Request().Context(), tenantID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to deactivate tenant")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Tenant deactivated successfully",
	})
}

// parseTenantID extracts and validates the :id path parameter.
func parseTenantID(c echo.Context) (uuid.UUID, error) {
	tenantIDStr := c.Param("id")
	if tenantIDStr == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}

	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid tenant ID format")
	}
	return tenantID, nil
}
