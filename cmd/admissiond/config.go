package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"vectorgate/internal/admit"
	"vectorgate/pkg/admission"
)

// config describes the admissiond YAML configuration.
type config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
		Store      string `yaml:"store"`
	} `yaml:"server"`
	Redis struct {
		Addr           string `yaml:"addr"`
		Password       string `yaml:"password"`
		DB             int    `yaml:"db"`
		DialTimeoutMs  int    `yaml:"dial_timeout_ms"`
		ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
		WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	} `yaml:"redis"`
	Admission struct {
		FallbackPolicy  string `yaml:"fallback_policy"`
		StoreTimeoutMs  int    `yaml:"store_timeout_ms"`
		QuotaCacheTTLMs int    `yaml:"quota_cache_ttl_ms"`
		DefaultTier     string `yaml:"default_tier"`
	} `yaml:"admission"`
	Quotas struct {
		Costs              map[string]int64                 `yaml:"costs"`
		TierDefaults       map[string]admission.TenantQuota `yaml:"tier_defaults"`
		OperationOverrides map[string]map[string]int64      `yaml:"operation_overrides"`
		Tenants            []admission.TenantQuota          `yaml:"tenants"`
	} `yaml:"quotas"`
}

// loadConfig reads and validates the configuration file.
func loadConfig(path string) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.Store == "" {
		cfg.Server.Store = "memory"
	}
	if cfg.Server.Store != "memory" && cfg.Server.Store != "redis" {
		return cfg, fmt.Errorf("server.store must be memory or redis, got %q", cfg.Server.Store)
	}
	if cfg.Server.Store == "redis" && cfg.Redis.Addr == "" {
		return cfg, fmt.Errorf("redis.addr is required")
	}
	if _, err := admit.ParseFallbackPolicy(cfg.Admission.FallbackPolicy); err != nil {
		return cfg, fmt.Errorf("admission.fallback_policy: %w", err)
	}
	if cfg.Admission.StoreTimeoutMs <= 0 {
		cfg.Admission.StoreTimeoutMs = 100
	}
	if cfg.Admission.QuotaCacheTTLMs <= 0 {
		cfg.Admission.QuotaCacheTTLMs = 5000
	}
	return cfg, nil
}

// tierDefaults converts the YAML tier map to typed keys.
func tierDefaults(cfg config) map[admission.Tier]admission.TenantQuota {
	out := make(map[admission.Tier]admission.TenantQuota, len(cfg.Quotas.TierDefaults))
	for tier, q := range cfg.Quotas.TierDefaults {
		out[admission.Tier(tier)] = q
	}
	return out
}

// operationOverrides converts the YAML override map to typed keys.
func operationOverrides(cfg config) map[admission.Tier]map[string]int64 {
	out := make(map[admission.Tier]map[string]int64, len(cfg.Quotas.OperationOverrides))
	for tier, ops := range cfg.Quotas.OperationOverrides {
		out[admission.Tier(tier)] = ops
	}
	return out
}

func millis(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
