package handlers

import (
	"net/http"

	"corpgate/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProvisioningHandlers handles country, branch and user provisioning requests
type ProvisioningHandlers struct {
	provisioningService services.ProvisioningService
}

// NewProvisioningHandlers creates a new provisioning handlers instance
func NewProvisioningHandlers(provisioningService services.ProvisioningService) *ProvisioningHandlers {
	return &ProvisioningHandlers{provisioningService: provisioningService}
}

// CreateCountry handles adding an operating country to a tenant
func (h *ProvisioningHandlers) CreateCountry(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req services.CreateCountryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	country, err := h.provisioningService.CreateCountry(c.Request().Context(), tenantID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, country)
}

// ListCountries handles listing a tenant's operating countries
func (h *ProvisioningHandlers) ListCountries(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	countries, err := h.provisioningService.ListCountries(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list countries")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"countries": countries,
	})
}

// DeleteCountry handles removing an operating country
func (h *ProvisioningHandlers) DeleteCountry(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	countryID, err := uuid.Parse(c.Param("countryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid country ID format")
	}

	if err := h.provisioningService.DeleteCountry(c.Request().Context(), tenantID, countryID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete country")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Country deleted successfully",
	})
}

// CreateBranch handles adding a branch under an operating country
func (h *ProvisioningHandlers) CreateBranch(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req services.CreateBranchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	branch, err := h.provisioningService.CreateBranch(c.Request().Context(), tenantID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, branch)
}

// ListBranches handles listing a tenant's branches
func (h *ProvisioningHandlers) ListBranches(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	branches, err := h.provisioningService.ListBranches(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list branches")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"branches": branches,
	})
}

// DeleteBranch handles removing a branch
func (h *ProvisioningHandlers) DeleteBranch(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	branchID, err := uuid.Parse(c.Param("branchId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid branch ID format")
	}

	if err := h.provisioningService.DeleteBranch(c.Request().Context(), tenantID, branchID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete branch")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Branch deleted successfully",
	})
}

// CreateUser handles provisioning a user record for a tenant
func (h *ProvisioningHandlers) CreateUser(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req services.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.provisioningService.CreateUser(c.Request().Context(), tenantID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, user)
}

// ListUsers handles listing a tenant's provisioned users
func (h *ProvisioningHandlers) ListUsers(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	users, err := h.provisioningService.ListUsers(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

// DeactivateUser handles soft-deactivating a provisioned user
func (h *ProvisioningHandlers) DeactivateUser(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}

	if err := h.provisioningService.DeactivateUser(c.Request().Context(), tenantID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to deactivate user")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "User deactivated successfully",
	})
}
