package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant statuses. Tenants are soft-deactivated, never hard-deleted.
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

type Tenant struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Code             string    `json:"code" db:"code"`
	Status           string    `json:"status" db:"status"`
	SettingsComplete bool      `json:"settings_complete" db:"settings_complete"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
