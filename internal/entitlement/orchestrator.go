package entitlement

import (
	"fmt"

	"corpgate/internal/models"

	"github.com/google/uuid"
)

// NotificationEvent is one pending threshold notification the caller must
// dispatch and then persist via an atomic set-if-false write-back.
type NotificationEvent struct {
	Threshold string    `json:"threshold"`
	TenantID  uuid.UUID `json:"tenant_id"`
	LicenseID uuid.UUID `json:"license_id"`
}

// Decision is the combined entitlement outcome for one tenant at one instant.
type Decision struct {
	AccessGranted bool                `json:"access_granted"`
	Reason        string              `json:"reason"`
	Setup         SetupStatus         `json:"setup"`
	License       LicenseState        `json:"license"`
	Events        []NotificationEvent `json:"events,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
}

// expiryThresholds is the day-count ladder for pre-expiry notifications,
// tightest last.
var expiryThresholds = []struct {
	Name string
	Days int
}{
	{models.ThresholdExpiry30, 30},
	{models.ThresholdExpiry14, 14},
	{models.ThresholdExpiry7, 7},
	{models.ThresholdExpiry3, 3},
}

// Decide combines both evaluators' outputs into one access decision plus the
// set of notification thresholds that are crossed and not yet sent.
//
// Access derives from license validity alone; incomplete setup nudges via
// banners but never blocks. A license that went unevaluated across several
// thresholds fires all of the missed ones in a single call, so the schedule
// holds even when the system is not evaluated daily. Repeated calls over the
// same NotificationsSent snapshot emit the same events (no hidden state);
// exactly-once delivery comes from the caller's conditional write-back.
func Decide(setup SetupStatus, state LicenseState, license *models.License) Decision {
	decision := Decision{
		AccessGranted: state.Valid,
		Reason:        reasonFor(state),
		Setup:         setup,
		License:       state,
		Warnings:      setup.Warnings,
	}

	if license == nil {
		return decision
	}

	emit := func(threshold string) {
		if !license.NotificationsSent.Sent(threshold) {
			decision.Events = append(decision.Events, NotificationEvent{
				Threshold: threshold,
				TenantID:  license.TenantID,
				LicenseID: license.ID,
			})
		}
	}

	switch state.Status {
	case StatusActive:
		for _, t := range expiryThresholds {
			if state.DaysUntilExpiry <= t.Days {
				emit(t.Name)
			}
		}
	case StatusGrace:
		for _, t := range expiryThresholds {
			emit(t.Name)
		}
		emit(models.ThresholdGracePeriod)
	case StatusExpired:
		for _, t := range expiryThresholds {
			emit(t.Name)
		}
		emit(models.ThresholdGracePeriod)
		emit(models.ThresholdExpired)
	}
	// none and blocked emit nothing: there is no license to notify about, or
	// revocation was an explicit administrative act outside the schedule.

	return decision
}

func reasonFor(state LicenseState) string {
	switch state.Status {
	case StatusActive:
		return fmt.Sprintf("license active, %d day(s) until expiry", state.DaysUntilExpiry)
	case StatusGrace:
		return fmt.Sprintf("license expired, %d day(s) of grace period remaining", state.DaysInGrace)
	case StatusExpired:
		return "license expired and grace period exhausted"
	case StatusBlocked:
		return "license revoked by administrator"
	default:
		return "no license on file"
	}
}
