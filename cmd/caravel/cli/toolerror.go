// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so CI wrappers and release
// scripts can make programmatic decisions (retry, fix input, page an
// operator) without parsing error message text. The category is
// printed alongside the error when a command fails.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// a malformed manifest, missing required flags, an unparseable
	// image reference. Fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not
	// exist: missing manifest file, missing identity file, unknown
	// credential file. Retrying with the same parameters will not
	// help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient indicates a temporary failure: registry
	// unreachable, SSH connection refused, timeout. Back off and
	// retry the release.
	CategoryTransient ErrorCategory = "transient"

	// CategoryOutage indicates the deploy removed the previous
	// container and failed to start the new one: the service is down.
	// Page an operator; do not blindly retry.
	CategoryOutage ErrorCategory = "outage"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, parse errors on data Caravel produced. Report rather
	// than retry.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by CLI commands.
//
// ToolError wraps an inner error, preserving the full error chain for
// debugging while adding category metadata. Use the category-specific
// constructors (Validation, NotFound, etc.) rather than constructing
// ToolError directly.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The category is not
// part of the message; it travels separately on the error value.
func (e *ToolError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the ToolError wrapper.
func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Outage creates an outage error: the service is down and needs an operator.
func Outage(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryOutage, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
