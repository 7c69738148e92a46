package env

import (
	"fmt"

	"github.com/flowkit/flowkit/config"
)

// KVBackend selects the buffer store implementation an Environment uses.
type KVBackend string

const (
	// KVBackendMem keeps every buffer in process memory; lost on restart.
	KVBackendMem KVBackend = "mem"
	// KVBackendBadger persists buffers to an embedded Badger database.
	KVBackendBadger KVBackend = "badger"
)

// TracingConfig controls whether and where OpenTelemetry traces and
// metrics are exported.
type TracingConfig struct {
	Enabled  bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool    `yaml:"insecure" mapstructure:"insecure"`
	Sample   float64 `yaml:"sample" mapstructure:"sample"`
}

// Config is the configuration for one Environment. Services embed
// config.ServiceConfig for the name/environment/debug/logging fields
// every flowkit service shares.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// KVBackend selects Mem or Badger for the buffer store.
	KVBackend KVBackend `yaml:"kv_backend" mapstructure:"kv_backend"`
	// KVPath is the Badger data directory. Ignored for KVBackendMem.
	KVPath string `yaml:"kv_path" mapstructure:"kv_path"`
	// MaxConcurrentNodes caps concurrent node tasks via a bulkhead.
	// 0 means unlimited.
	MaxConcurrentNodes int `yaml:"max_concurrent_nodes" mapstructure:"max_concurrent_nodes"`
	// Tracing controls OpenTelemetry export.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	// Registry lists flow-plan YAML files to load into the flow
	// registry at startup, in order.
	Registry []string `yaml:"registry" mapstructure:"registry"`
}

// ApplyDefaults fills unset fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.KVBackend == "" {
		c.KVBackend = KVBackendMem
	}
	if c.KVPath == "" {
		c.KVPath = "./data/kv"
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.Sample == 0 {
		c.Tracing.Sample = 1.0
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	switch c.KVBackend {
	case KVBackendMem, KVBackendBadger:
	default:
		return fmt.Errorf("env: kv_backend must be %q or %q (got %q)", KVBackendMem, KVBackendBadger, c.KVBackend)
	}
	if c.KVBackend == KVBackendBadger && c.KVPath == "" {
		return fmt.Errorf("env: kv_path is required when kv_backend is %q", KVBackendBadger)
	}
	if c.MaxConcurrentNodes < 0 {
		return fmt.Errorf("env: max_concurrent_nodes must be >= 0")
	}
	return nil
}

// Load reads configuration for serviceName from its standard config.yml
// and .env locations, applies defaults, and validates the result.
func Load(serviceName string) (*Config, error) {
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg); err != nil {
		return nil, fmt.Errorf("env: loading config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("env: invalid config: %w", err)
	}
	return cfg, nil
}
