// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content hashing for save blobs.
//
// savepatch fingerprints every blob it imports. The digest is stored in
// the session file and printed by inspect, so a later export can report
// which source blob its header and footer came from, and a user can
// tell at a glance whether two save files are byte-identical.
//
// The API surface:
//
//   - [Sum] hashes an in-memory buffer
//   - [HashFile] streams a file through the hasher with constant memory
//   - [FormatDigest] and [ParseDigest] convert between a [Digest] and
//     its canonical hex string
//
// This package has no dependencies on other savepatch packages.
package binhash
