// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides savepatch's CBOR encoding configuration.
//
// savepatch uses two serialization formats with a clear boundary:
//
//   - JSON for anything a person reads: save payloads, CLI --json
//     output.
//   - CBOR for its own on-disk state: the session file that carries a
//     located envelope from one invocation to the next.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same session always produces identical bytes:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types that only live on disk use `cbor` struct tags. Types that also
// appear in --json output use `json` tags, which fxamacker/cbor reads as
// a fallback. Never put both tags on one field.
package codec
