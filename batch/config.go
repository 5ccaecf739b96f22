package batch

import (
	"runtime"

	"github.com/kbukum/docflow/validation"
)

// Config controls how many documents are processed at once.
type Config struct {
	// Concurrency caps the pipelines running at the same time. Zero means
	// one per CPU.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"min=0"`
	// FailFast cancels the remaining jobs after the first failure.
	FailFast bool `yaml:"fail_fast" mapstructure:"fail_fast"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = runtime.NumCPU()
	}
}

// Validate validates batch configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
