package handlers

import (
	"errors"
	"net/http"

	"corpgate/internal/entitlement"
	"corpgate/internal/services"

	"github.com/labstack/echo/v4"
)

// EntitlementHandlers exposes the readiness and entitlement decisions
type EntitlementHandlers struct {
	entitlementService services.EntitlementService
}

// NewEntitlementHandlers creates a new entitlement handlers instance
func NewEntitlementHandlers(entitlementService services.EntitlementService) *EntitlementHandlers {
	return &EntitlementHandlers{entitlementService: entitlementService}
}

// GetEntitlement returns the composite access decision for a tenant
func (h *EntitlementHandlers) GetEntitlement(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	decision, err := h.entitlementService.Evaluate(c.Request().Context(), tenantID)
	if err != nil {
		return entitlementError(err)
	}

	return c.JSON(http.StatusOK, decision)
}

// RefreshEntitlement recomputes the decision, bypassing the cache
func (h *EntitlementHandlers) RefreshEntitlement(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	decision, err := h.entitlementService.Refresh(c.Request().Context(), tenantID)
	if err != nil {
		return entitlementError(err)
	}

	return c.JSON(http.StatusOK, decision)
}

// GetSetupStatus returns only the provisioning readiness of a tenant
func (h *EntitlementHandlers) GetSetupStatus(c echo.Context) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	status, err := h.entitlementService.SetupStatus(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to evaluate setup status")
	}

	return c.JSON(http.StatusOK, status)
}

// entitlementError maps evaluation failures onto HTTP status codes. A
// malformed license record is a data problem the operator must fix, not a
// server fault.
func entitlementError(err error) error {
	var confErr *entitlement.ConfigurationError
	if errors.As(err, &confErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, confErr.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to evaluate entitlement")
}
