package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"corpgate/internal/models"

	"github.com/redis/go-redis/v9"
)

// LicenseNotifier delivers one threshold notification. Callers gate it behind
// the conditional notifications_sent write-back, so an implementation may be
// fired at most once per threshold per license.
type LicenseNotifier interface {
	NotifyThreshold(ctx context.Context, tenant *models.Tenant, license *models.License, threshold string) error
}

const licenseEventChannel = "corpgate:license-events"

type licenseEventPayload struct {
	Threshold  string    `json:"threshold"`
	TenantID   string    `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	LicenseID  string    `json:"license_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsTrial    bool      `json:"is_trial"`
	At         time.Time `json:"at"`
}

type redisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier publishes license threshold events to a Redis channel for
// downstream consumers (mailer, UI banner feed) and logs the email that would
// be sent.
func NewRedisNotifier(redisAddr, redisPassword string, redisDB int) LicenseNotifier {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &redisNotifier{client: client}
}

func (n *redisNotifier) NotifyThreshold(ctx context.Context, tenant *models.Tenant, license *models.License, threshold string) error {
	// TODO: integrate with the transactional mail provider once the template
	// set is finalized; until then the event stream is the delivery channel.
	log.Printf("[LICENSE-NOTICE] tenant=%s threshold=%s license=%s expires=%s",
		tenant.Code, threshold, license.ID.String(), license.ExpiresAt.Format(time.RFC3339))

	payload := licenseEventPayload{
		Threshold:  threshold,
		TenantID:   tenant.ID.String(),
		TenantName: tenant.Name,
		LicenseID:  license.ID.String(),
		ExpiresAt:  license.ExpiresAt,
		IsTrial:    license.IsTrial,
		At:         time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode license event: %v", err)
	}

	if err := n.client.Publish(ctx, licenseEventChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish license event: %v", err)
	}
	return nil
}
