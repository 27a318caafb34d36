package handlers

import (
	"net/http"

	"corpgate/internal/common"
	"corpgate/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LicenseHandlers handles license lifecycle HTTP requests
type LicenseHandlers struct {
	licenseService services.LicenseService
}

// NewLicenseHandlers creates a new license handlers instance
func NewLicenseHandlers(licenseService services.LicenseService) *LicenseHandlers {
	return &LicenseHandlers{licenseService: licenseService}
}

// IssueLicense handles issuing a new license for a tenant
func (h *LicenseHandlers) IssueLicense(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req services.IssueLicenseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.DurationDays <= 0 {
		return common.SendValidationError(c, "duration_days", "must be a positive number of days")
	}

	license, err := h.licenseService.Issue(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendServerError(c, "Failed to issue license: "+err.Error())
	}

	return c.JSON(http.StatusCreated, license)
}

// RevokeLicense handles administratively revoking a license
func (h *LicenseHandlers) RevokeLicense(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	licenseID, err := uuid.Parse(c.Param("licenseId"))
	if err != nil {
		return common.SendValidationError(c, "licenseId", "invalid license ID format")
	}

	if err := h.licenseService.Revoke(c.Request().Context(), tenantID, licenseID); err != nil {
		return common.SendNotFoundError(c, "License")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "License revoked",
	})
}

// GetCurrentLicense handles getting the license currently governing a tenant
func (h *LicenseHandlers) GetCurrentLicense(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	license, err := h.licenseService.GetCurrent(c.Request().Context(), tenantID)
	if err != nil {
		return common.SendServerError(c, "Failed to load license")
	}
	if license == nil {
		return common.SendNotFoundError(c, "License")
	}

	return c.JSON(http.StatusOK, license)
}

// ListLicensesRequest represents query parameters for listing license history
type ListLicensesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListLicenses handles listing a tenant's license history
func (h *LicenseHandlers) ListLicenses(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req ListLicensesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	licenses, err := h.licenseService.List(c.Request().Context(), tenantID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list licenses")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"licenses": licenses,
	})
}
