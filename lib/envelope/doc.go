// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope finds and replaces the one serialized string record
// inside an otherwise opaque binary blob.
//
// A string record is laid out as:
//
//	06 | 4-byte record id | varint length L | L bytes of UTF-8
//
// Everything before the length prefix is the header and everything after
// the payload is the footer. Neither is interpreted. [Locate] cuts a blob
// into a [Split]; [Patch] reassembles header, a new payload with a freshly
// encoded length, and footer. Patching with the unchanged payload yields
// the original bytes exactly.
//
// The scan is first-match: the first 0x06 byte that is followed by a
// decodable length and an in-bounds payload is taken as the record. A tag
// byte that appears earlier as incidental header data and happens to
// satisfy those checks will be chosen instead of the real record. The
// container format gives no stronger anchor, so this is inherited rather
// than fixed.
package envelope
