package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification thresholds, in the order they are crossed as a license ages.
const (
	ThresholdExpiry30    = "expiry30"
	ThresholdExpiry14    = "expiry14"
	ThresholdExpiry7     = "expiry7"
	ThresholdExpiry3     = "expiry3"
	ThresholdGracePeriod = "gracePeriod"
	ThresholdExpired     = "expired"
)

// NotificationFlags maps threshold names to whether the corresponding
// notification has been sent for a license. Flags are monotonic: once true
// they are never reset for the same license instance.
type NotificationFlags map[string]bool

func (f NotificationFlags) Sent(threshold string) bool {
	if f == nil {
		return false
	}
	return f[threshold]
}

// License is a time-bounded entitlement record. Its lifecycle status is never
// stored; it is recomputed from the timestamps at every evaluation.
// NotificationsSent is the only mutable persisted field.
type License struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	TenantID          uuid.UUID         `json:"tenant_id" db:"tenant_id"`
	IssuedAt          time.Time         `json:"issued_at" db:"issued_at"`
	ExpiresAt         time.Time         `json:"expires_at" db:"expires_at"`
	GracePeriodEnds   time.Time         `json:"grace_period_ends" db:"grace_period_ends"`
	TotalDurationDays int               `json:"total_duration_days" db:"total_duration_days"`
	IsTrial           bool              `json:"is_trial" db:"is_trial"`
	Revoked           bool              `json:"revoked" db:"revoked"`
	NotificationsSent NotificationFlags `json:"notifications_sent" db:"notifications_sent"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}
