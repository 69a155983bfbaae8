// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds cipher keys in memory that the garbage
// collector never sees.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped.
//
// Keys arrive from one of three places:
//
//   - [ReadFromPath] -- a key file, or stdin when the path is "-"
//   - [Prompt] -- an interactive terminal with echo disabled
//   - [NewFromString] -- a value already on the heap (flag or env var)
//
// AES uses the key bytes verbatim, so readers strip only the trailing
// line ending and never trim spaces.
//
// Depends on golang.org/x/sys/unix and golang.org/x/term. No other
// savepatch dependencies.
package secret
