// Package errors provides structured error types for componentize-go.
//
// Errors are categorized by Phase (the pipeline stage) and Kind (error category).
// The Error type carries the offending filesystem path, the stderr of a failed
// child process, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBuild, errors.KindProcess).
//		Detail("'go build' command failed").
//		Stderr(stderr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.IO(errors.PhaseEmbed, "read module", path, cause)
//	err := errors.Unsupported(errors.PhaseBuild, "wasip1-only builds")
//
// All errors implement the standard error interface and support errors.Is/As.
// A target with an empty Phase or Kind matches any value for that field.
package errors
