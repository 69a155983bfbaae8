// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fault defines the typed failures returned by the savepatch
// core. Every core error carries a [Kind] so callers can branch on what
// went wrong without parsing message text:
//
//	split, err := envelope.Locate(data)
//	if errors.Is(err, fault.ErrRecordNotFound) {
//	    // not a recognized blob
//	}
//
// The core never logs, retries, or swallows errors. Presentation is the
// caller's job.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a core failure.
type Kind string

const (
	// MalformedVarInt indicates a corrupt, truncated, or overlong
	// length prefix.
	MalformedVarInt Kind = "malformed_varint"

	// RecordNotFound indicates no tag + length + payload triple in the
	// buffer was structurally valid.
	RecordNotFound Kind = "record_not_found"

	// InvalidUTF8 indicates a payload or decoded byte sequence that is
	// not valid UTF-8.
	InvalidUTF8 Kind = "invalid_utf8"

	// InvalidEncoding indicates malformed base64, base64url, or hex text.
	InvalidEncoding Kind = "invalid_encoding"

	// UnsupportedAlgorithm indicates a cipher algorithm outside the
	// supported set.
	UnsupportedAlgorithm Kind = "unsupported_algorithm"

	// UnknownEncoding indicates a text encoding name outside the
	// supported set.
	UnknownEncoding Kind = "unknown_encoding"

	// MissingCipherLibrary indicates that no block cipher capability was
	// supplied.
	MissingCipherLibrary Kind = "missing_cipher_library"

	// DecryptionFailed indicates a wrong key, bad padding, or a
	// ciphertext that is not a whole number of blocks.
	DecryptionFailed Kind = "decryption_failed"

	// InvalidKey indicates a key the block cipher cannot use (AES needs
	// 16, 24, or 32 bytes).
	InvalidKey Kind = "invalid_key"

	// InvalidJSON indicates edited text that does not parse as JSON.
	InvalidJSON Kind = "invalid_json"

	// NoEnvelopeLoaded indicates an export attempted before any
	// successful import.
	NoEnvelopeLoaded Kind = "no_envelope_loaded"
)

// Error is a classified core failure. Match with errors.Is against the
// Err* sentinels below, or extract the kind with [KindOf].
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind. Sentinels are
// Error values with a nil Err, so two failures of the same kind with
// different messages still compare unequal to each other.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok || sentinel.Err != nil {
		return false
	}
	return sentinel.Kind == e.Kind
}

// Newf returns a failure of the given kind with a formatted message.
// %w verbs in format are honored.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrMalformedVarInt      = &Error{Kind: MalformedVarInt}
	ErrRecordNotFound       = &Error{Kind: RecordNotFound}
	ErrInvalidUTF8          = &Error{Kind: InvalidUTF8}
	ErrInvalidEncoding      = &Error{Kind: InvalidEncoding}
	ErrUnsupportedAlgorithm = &Error{Kind: UnsupportedAlgorithm}
	ErrUnknownEncoding      = &Error{Kind: UnknownEncoding}
	ErrMissingCipherLibrary = &Error{Kind: MissingCipherLibrary}
	ErrDecryptionFailed     = &Error{Kind: DecryptionFailed}
	ErrInvalidKey           = &Error{Kind: InvalidKey}
	ErrInvalidJSON          = &Error{Kind: InvalidJSON}
	ErrNoEnvelopeLoaded     = &Error{Kind: NoEnvelopeLoaded}
)

// KindOf returns the kind of the outermost *Error in err's chain, or ""
// when err carries no classification.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return ""
}
