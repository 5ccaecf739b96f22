package pipeline

import (
	"github.com/kbukum/docflow/validation"
)

// Config holds the per-run options. Process works on its own copy, so
// changing a Config during a run has no effect on that run.
type Config struct {
	SourceLanguage    string `yaml:"source_language" mapstructure:"source_language" validate:"required,bcp47"`
	TargetLanguage    string `yaml:"target_language" mapstructure:"target_language" validate:"required,bcp47"`
	InputEncoding     string `yaml:"input_encoding" mapstructure:"input_encoding" validate:"required,charset"`
	OutputEncoding    string `yaml:"output_encoding" mapstructure:"output_encoding" validate:"required,charset"`
	OutputDestination string `yaml:"output_destination" mapstructure:"output_destination" validate:"required"`
}

// ApplyDefaults fills unset encodings with UTF-8.
func (c *Config) ApplyDefaults() {
	if c.InputEncoding == "" {
		c.InputEncoding = "utf-8"
	}
	if c.OutputEncoding == "" {
		c.OutputEncoding = "utf-8"
	}
}

// Validate checks language tags, encodings and the destination.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Document builds the RawDocument for uri using the configured input options.
func (c Config) Document(uri string) RawDocument {
	return RawDocument{
		URI:          uri,
		Encoding:     c.InputEncoding,
		SourceLocale: c.SourceLanguage,
	}
}

// SinkOptions builds the options handed to the sink.
func (c Config) SinkOptions() SinkOptions {
	return SinkOptions{
		TargetLocale: c.TargetLanguage,
		Encoding:     c.OutputEncoding,
		Destination:  c.OutputDestination,
	}
}
