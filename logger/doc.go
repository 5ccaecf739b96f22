// Package logger provides structured logging for docflow using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Pipelines log through a
// *Logger so a run can be correlated by pipeline id and trace id.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("pipeline")
//	log.Info("run completed", logger.Fields(logger.FieldEvents, 42))
package logger
