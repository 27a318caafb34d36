package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// EngineConfig represents the complete engine configuration
type EngineConfig struct {
	Entitlement EntitlementConfig `toml:"entitlement"`
	Sweep       SweepConfig       `toml:"sweep"`
	Storage     StorageConfig     `toml:"storage"`
}

// EntitlementConfig contains licensing defaults and cache settings
type EntitlementConfig struct {
	GracePeriodDays     int `toml:"grace_period_days"`
	DefaultDurationDays int `toml:"default_duration_days"`
	CacheTTLSeconds     int `toml:"cache_ttl_seconds"`
}

// SweepConfig contains background sweep settings
type SweepConfig struct {
	IntervalHours        int `toml:"interval_hours"`
	TenantTimeoutSeconds int `toml:"tenant_timeout_seconds"`
	Concurrency          int `toml:"concurrency"`
	TenantBatchSize      int `toml:"tenant_batch_size"`
}

// StorageConfig contains certificate archival settings
type StorageConfig struct {
	CertificateBucket string `toml:"certificate_bucket"`
}

// LoadEngineConfig loads configuration from a TOML file
func LoadEngineConfig(filename string) (*EngineConfig, error) {
	config := DefaultEngineConfig()
	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return config, nil
}

// DefaultEngineConfig returns the configuration used when no file is present.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Entitlement: EntitlementConfig{
			GracePeriodDays:     14,
			DefaultDurationDays: 365,
			CacheTTLSeconds:     300,
		},
		Sweep: SweepConfig{
			IntervalHours:        24,
			TenantTimeoutSeconds: 30,
			Concurrency:          5,
			TenantBatchSize:      1000,
		},
		Storage: StorageConfig{
			CertificateBucket: "corpgate-licenses",
		},
	}
}

// CacheTTL returns the decision cache TTL as a duration.
func (c *EntitlementConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Interval returns the sweep interval as a duration.
func (c *SweepConfig) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// TenantTimeout returns the per-tenant evaluation timeout as a duration.
func (c *SweepConfig) TenantTimeout() time.Duration {
	return time.Duration(c.TenantTimeoutSeconds) * time.Second
}
