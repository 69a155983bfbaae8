// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/savepatch/lib/fault"
)

// ErrorCategory classifies command errors so that scripts can make
// decisions (fix input, give up, report a bug) from the exit code
// without parsing error message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// missing required parameters, wrong argument count, unparseable
	// values, a wrong key, malformed JSON. The caller should fix the
	// input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced thing does not exist: no
	// string record in the blob, no saved session, a missing file.
	// Retrying with the same parameters will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, a missing cipher implementation. The caller should
	// report the error rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// Exit codes per category. 1 is left to uncategorized failures and
// handled non-zero outcomes like a failed verify.
const (
	ExitInternal   = 1
	ExitValidation = 2
	ExitNotFound   = 3
)

// ToolError is a categorized error returned by CLI commands. main
// inspects the Category to choose the process exit code.
//
// ToolError wraps an inner error, preserving the full error chain for
// errors.Is while adding category metadata. Use the category-specific
// constructors (Validation, NotFound, Internal) or [Categorize] rather
// than constructing ToolError directly.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is an optional next step shown after the message.
	Hint string
}

// Error returns the underlying error message, followed by the hint on
// its own paragraph when one is set.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the ToolError wrapper.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Categorize wraps err in a ToolError whose category and hint follow
// from its fault kind. Errors that already carry a ToolError, and
// errors with no fault kind, are returned unchanged. Nil stays nil.
func Categorize(err error) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return err
	}

	kind := fault.KindOf(err)
	if kind == "" {
		return err
	}

	categorized := &ToolError{Category: categoryOf(kind), Err: err}
	switch kind {
	case fault.RecordNotFound:
		categorized.Hint = "The file does not contain a string record (tag 0x06). Check that it is a supported save file."
	case fault.DecryptionFailed:
		categorized.Hint = "Check the key and the --encoding the payload was written with."
	case fault.InvalidKey:
		categorized.Hint = "AES keys are used verbatim and must be 16, 24, or 32 bytes long."
	case fault.UnknownEncoding:
		categorized.Hint = "AES ciphertext needs a text encoding: base64, base64url, or hex."
	case fault.NoEnvelopeLoaded:
		categorized.Hint = "Run 'savepatch import <blob>' first."
	case fault.InvalidJSON:
		categorized.Hint = "Run 'savepatch pretty <file>' to locate the syntax error."
	}
	return categorized
}

// categoryOf maps a fault kind to an error category.
func categoryOf(kind fault.Kind) ErrorCategory {
	switch kind {
	case fault.RecordNotFound, fault.NoEnvelopeLoaded:
		return CategoryNotFound
	case fault.MissingCipherLibrary:
		return CategoryInternal
	default:
		return CategoryValidation
	}
}

// ExitCodeFor returns the process exit code for err: the code of an
// [ExitError], the category code of a [ToolError], the category code of
// a fault kind, or [ExitInternal] otherwise. A nil error exits 0.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	category := CategoryInternal
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		category = toolErr.Category
	} else if kind := fault.KindOf(err); kind != "" {
		category = categoryOf(kind)
	}

	switch category {
	case CategoryValidation:
		return ExitValidation
	case CategoryNotFound:
		return ExitNotFound
	default:
		return ExitInternal
	}
}
