// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic data structures that capture failures produced
//     by the merge transforms, the external tool boundary, and the
//     post-link validation checks.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) naming the failure
//     class: configuration contradiction, external tool failure, policy
//     mismatch, or missing input.
//   - Message – human oriented text; keep it short and actionable.
//   - Path – the offending file, locale, or identifier when one exists.
//
// Diagnostic implements error, so fatal findings travel up the pipeline as
// ordinary wrapped errors and can be classified with errors.As at the CLI
// boundary.
//
// No diagnostic is ever swallowed: every fatal condition renders with the
// offending path/locale/ID attached, and only the manifest expectation check
// may be downgraded to a warning, under an explicit non-strict flag.
package diag
