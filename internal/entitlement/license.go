package entitlement

import (
	"fmt"
	"time"

	"corpgate/internal/models"
)

// LicenseStatus is the instant lifecycle state of a license. It is recomputed
// on every evaluation and never persisted.
type LicenseStatus string

const (
	StatusNone    LicenseStatus = "none"
	StatusActive  LicenseStatus = "active"
	StatusGrace   LicenseStatus = "grace"
	StatusExpired LicenseStatus = "expired"
	StatusBlocked LicenseStatus = "blocked"
)

// LicenseState is the evaluator output: the status plus advisory day counts.
// Valid is true only for active and grace.
type LicenseState struct {
	Status          LicenseStatus `json:"status"`
	Valid           bool          `json:"valid"`
	DaysUntilExpiry int           `json:"days_until_expiry"`
	DaysInGrace     int           `json:"days_in_grace"`
}

// ConfigurationError reports a license record whose timestamps cannot produce
// a correct entitlement decision. It is a data-integrity fault and is never
// silently coerced.
type ConfigurationError struct {
	LicenseID string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("license %s misconfigured: %s", e.LicenseID, e.Reason)
}

// EvaluateLicense derives the lifecycle state of a license at the given
// instant. Pure and deterministic: identical inputs always yield identical
// output.
//
// Precedence: blocked (explicit revoke) over every date-based state, then
// active, grace, expired. Boundaries are inclusive: now == expiresAt is still
// active, now == gracePeriodEnds is still grace.
func EvaluateLicense(license *models.License, now time.Time) (LicenseState, error) {
	if license == nil {
		return LicenseState{Status: StatusNone}, nil
	}

	if license.Revoked {
		// Administrative override, independent of any date relationship.
		return LicenseState{Status: StatusBlocked}, nil
	}

	if !license.ExpiresAt.After(license.IssuedAt) {
		return LicenseState{}, &ConfigurationError{
			LicenseID: license.ID.String(),
			Reason:    "expires_at must be after issued_at",
		}
	}
	if !license.GracePeriodEnds.After(license.ExpiresAt) {
		return LicenseState{}, &ConfigurationError{
			LicenseID: license.ID.String(),
			Reason:    "grace_period_ends must be after expires_at",
		}
	}

	switch {
	case !now.After(license.ExpiresAt):
		return LicenseState{
			Status:          StatusActive,
			Valid:           true,
			DaysUntilExpiry: ceilDays(license.ExpiresAt.Sub(now)),
		}, nil
	case !now.After(license.GracePeriodEnds):
		return LicenseState{
			Status:      StatusGrace,
			Valid:       true,
			DaysInGrace: ceilDays(license.GracePeriodEnds.Sub(now)),
		}, nil
	default:
		return LicenseState{Status: StatusExpired}, nil
	}
}

// ceilDays rounds a duration up to whole days, so a license expiring in one
// hour still reports one day remaining.
func ceilDays(d time.Duration) int {
	days := d / (24 * time.Hour)
	if d%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
