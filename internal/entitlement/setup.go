package entitlement

import (
	"fmt"

	"corpgate/internal/models"
)

// SetupStep identifies one provisioning step in canonical wizard order.
type SetupStep string

const (
	StepCompanyInfo SetupStep = "company"
	StepCountries   SetupStep = "countries"
	StepBranches    SetupStep = "branches"
	StepUsers       SetupStep = "users"
	StepSettings    SetupStep = "settings"
)

// SetupStatus is the derived readiness state of a tenant. It is computed from
// snapshots of the tenant's child collections and never persisted.
type SetupStatus struct {
	CompanyInfoComplete bool      `json:"company_info_complete"`
	CountriesComplete   bool      `json:"countries_complete"`
	BranchesComplete    bool      `json:"branches_complete"`
	UsersComplete       bool      `json:"users_complete"`
	SettingsComplete    bool      `json:"settings_complete"`
	IsComplete          bool      `json:"is_complete"`
	FirstIncompleteStep SetupStep `json:"first_incomplete_step,omitempty"`
	Warnings            []string  `json:"warnings,omitempty"`
}

// EvaluateSetup derives a tenant's setup completeness from snapshots of its
// child collections. Pure, no I/O, inputs are never mutated.
//
// Step ordering is advisory only: branches referencing out-of-order or missing
// countries still count toward branchesComplete, but unresolvable country
// references are surfaced as warnings.
func EvaluateSetup(tenant *models.Tenant, countries []*models.Country, branches []*models.Branch, users []*models.ProvisionedUser) SetupStatus {
	status := SetupStatus{
		CompanyInfoComplete: tenant != nil,
		CountriesComplete:   len(countries) > 0,
		BranchesComplete:    len(branches) > 0,
		UsersComplete:       len(users) > 0,
	}
	if tenant != nil {
		status.SettingsComplete = tenant.SettingsComplete
	}

	status.IsComplete = status.CompanyInfoComplete &&
		status.CountriesComplete &&
		status.BranchesComplete &&
		status.UsersComplete &&
		status.SettingsComplete

	status.FirstIncompleteStep = firstIncomplete(status)
	status.Warnings = orphanBranchWarnings(tenant, countries, branches)

	return status
}

// firstIncomplete returns the earliest incomplete step in canonical order so
// callers can resume a setup wizard, or "" when setup is complete.
func firstIncomplete(s SetupStatus) SetupStep {
	switch {
	case !s.CompanyInfoComplete:
		return StepCompanyInfo
	case !s.CountriesComplete:
		return StepCountries
	case !s.BranchesComplete:
		return StepBranches
	case !s.UsersComplete:
		return StepUsers
	case !s.SettingsComplete:
		return StepSettings
	}
	return ""
}

// orphanBranchWarnings flags branches whose country reference does not resolve
// to a country of the same tenant. Data inconsistency is surfaced for operator
// visibility, never fatal.
func orphanBranchWarnings(tenant *models.Tenant, countries []*models.Country, branches []*models.Branch) []string {
	if tenant == nil || len(branches) == 0 {
		return nil
	}

	known := make(map[string]bool, len(countries))
	for _, country := range countries {
		if country.TenantID == tenant.ID {
			known[country.ID.String()] = true
		}
	}

	var warnings []string
	for _, branch := range branches {
		if !known[branch.CountryID.String()] {
			warnings = append(warnings, fmt.Sprintf("branch %s references unknown country %s", branch.ID, branch.CountryID))
		}
	}
	return warnings
}
