package config

import (
	"fmt"

	"github.com/kbukum/docflow/batch"
	"github.com/kbukum/docflow/logger"
	"github.com/kbukum/docflow/observability"
	"github.com/kbukum/docflow/pipeline"
	"github.com/kbukum/docflow/validation"
)

// AppConfig is the full configuration of a docflow process.
type AppConfig struct {
	Name        string               `yaml:"name" mapstructure:"name"`
	Environment string               `yaml:"environment" mapstructure:"environment"`
	Version     string               `yaml:"version" mapstructure:"version"`
	Debug       bool                 `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Pipeline    pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Batch       batch.Config         `yaml:"batch" mapstructure:"batch"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

var environments = []string{"development", "staging", "production"}

// ApplyDefaults applies default values to every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "docflow"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// The telemetry resource inherits the service identity.
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = c.Version
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Logging.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Batch.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := validation.New().
		Required("name", c.Name).
		Required("environment", c.Environment).
		OneOf("environment", c.Environment, environments).
		Err(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("config.pipeline: %w", err)
	}
	if err := c.Batch.Validate(); err != nil {
		return fmt.Errorf("config.batch: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}

// Load reads the configuration of the named service, applies defaults and
// validates it.
func Load(serviceName string, opts ...LoaderOption) (*AppConfig, error) {
	var cfg AppConfig
	if err := LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
