// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session orchestrates the import, edit, and export round trip
// over a save blob.
//
// Import locates the string record, retains the resulting
// [envelope.Split], and decrypts the payload. Export compacts the
// edited JSON, encrypts it, and patches it into the retained split.
// Exactly one split is retained; each successful import replaces it
// wholesale, and an export before any import fails with
// fault.NoEnvelopeLoaded rather than touching stale data.
//
// The command line runs import and export as separate processes, so
// [Store] persists the retained split between them: a small
// deterministic CBOR document, compressed with zstd or LZ4 when that
// helps, written atomically with owner-only permissions.
package session
