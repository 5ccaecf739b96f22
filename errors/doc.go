// Package errors provides the error taxonomy shared by every docflow package.
// It implements a structured error type carrying a machine-readable code, a
// human-readable message and the underlying cause, so callers can branch on
// the failure class of a pipeline run with errors.Is / Is.
package errors
