// Package validation checks configuration and step arguments.
//
// Struct tag validation wraps go-playground/validator and adds two tags used
// by pipeline configuration: bcp47 (a well-formed language tag) and charset
// (an encoding name known to the WHATWG encoding index).
//
//	type Config struct {
//	    TargetLanguage string `validate:"required,bcp47"`
//	    OutputEncoding string `validate:"omitempty,charset"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects field errors:
//
//	v := validation.New()
//	v.Required("name", name).Locale("locale", locale)
//	err := v.Err()
package validation
