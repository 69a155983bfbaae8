// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jsonedit reformats the JSON documents carried inside save
// payloads. Decrypted payloads are pretty-printed for editing and edited
// documents are compacted before re-encryption.
//
// Input is JSONC: // line comments, /* block comments */, and trailing
// commas are accepted and dropped, so a hand-edited file can carry notes.
// Key order, number spelling, and string escapes are preserved exactly;
// only insignificant whitespace changes.
package jsonedit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/savepatch/lib/fault"
)

// Indent is the indentation unit used by Pretty.
const Indent = "  "

// Pretty re-indents text with two-space indentation. It fails with
// fault.InvalidJSON if text is not a single JSON value.
func Pretty(text string) (string, error) {
	stripped, err := normalize(text)
	if err != nil {
		return "", err
	}
	var buffer bytes.Buffer
	if err := json.Indent(&buffer, stripped, "", Indent); err != nil {
		return "", invalid(err)
	}
	return buffer.String(), nil
}

// Compact removes all insignificant whitespace from text. It fails with
// fault.InvalidJSON if text is not a single JSON value. Values are not
// reserialized: number spelling, string escapes, and duplicate keys are
// kept as written.
func Compact(text string) (string, error) {
	stripped, err := normalize(text)
	if err != nil {
		return "", err
	}
	var buffer bytes.Buffer
	if err := json.Compact(&buffer, stripped); err != nil {
		return "", invalid(err)
	}
	return buffer.String(), nil
}

// Valid reports whether text parses as JSONC.
func Valid(text string) bool {
	_, err := normalize(text)
	return err == nil
}

// Highlight renders JSON text with terminal colors. On any highlighter
// failure the text is returned unchanged.
func Highlight(text string) string {
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, text, "json", "terminal256", "monokai"); err != nil {
		return text
	}
	return buffer.String()
}

// normalize strips JSONC extensions and verifies the result is exactly
// one JSON value.
func normalize(text string) ([]byte, error) {
	stripped := jsonc.ToJSON([]byte(text))
	if len(bytes.TrimSpace(stripped)) == 0 {
		return nil, fault.Newf(fault.InvalidJSON, "document is empty")
	}
	var value any
	if err := json.Unmarshal(stripped, &value); err != nil {
		return nil, invalid(err)
	}
	return stripped, nil
}

func invalid(err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fault.Newf(fault.InvalidJSON, "parsing JSON at byte %d: %w", syntaxErr.Offset, err)
	}
	return fault.Newf(fault.InvalidJSON, "parsing JSON: %w", err)
}
