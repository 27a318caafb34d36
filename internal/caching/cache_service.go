package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"corpgate/internal/entitlement"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Entitlement decision caching
	GetDecision(ctx context.Context, tenantID uuid.UUID) (*entitlement.Decision, error)
	SetDecision(ctx context.Context, tenantID uuid.UUID, decision *entitlement.Decision, ttl time.Duration) error

	// Setup status caching
	GetSetupStatus(ctx context.Context, tenantID uuid.UUID) (*entitlement.SetupStatus, error)
	SetSetupStatus(ctx context.Context, tenantID uuid.UUID, status *entitlement.SetupStatus, ttl time.Duration) error

	// Cache invalidation after provisioning or license mutations
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error

	// Ping verifies Redis connectivity for health checks
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept both host:port and redis:// URLs.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func decisionKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("corpgate:entitlement:%s", tenantID.String())
}

func setupKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("corpgate:setup:%s", tenantID.String())
}

func (r *redisCacheService) GetDecision(ctx context.Context, tenantID uuid.UUID) (*entitlement.Decision, error) {
	data, err := r.client.Get(ctx, decisionKey(tenantID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var decision entitlement.Decision
	if err := json.Unmarshal(data, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

func (r *redisCacheService) SetDecision(ctx context.Context, tenantID uuid.UUID, decision *entitlement.Decision, ttl time.Duration) error {
	data, err := json.Marshal(decision)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, decisionKey(tenantID), data, ttl).Err()
}

func (r *redisCacheService) GetSetupStatus(ctx context.Context, tenantID uuid.UUID) (*entitlement.SetupStatus, error) {
	data, err := r.client.Get(ctx, setupKey(tenantID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var status entitlement.SetupStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *redisCacheService) SetSetupStatus(ctx context.Context, tenantID uuid.UUID, status *entitlement.SetupStatus, ttl time.Duration) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, setupKey(tenantID), data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, decisionKey(tenantID), setupKey(tenantID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
