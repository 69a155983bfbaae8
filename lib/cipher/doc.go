// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cipher provides the keyed transforms applied to save payloads.
//
// Two algorithms exist. [None] contributes no transformation: plaintext
// bytes go straight to the chosen text encoding. [AESECBPKCS7] encrypts
// with AES in ECB mode and PKCS#7 padding, using the UTF-8 bytes of the
// key string verbatim as the AES key (no derivation, so the key must be
// 16, 24, or 32 bytes long), then encodes the ciphertext.
//
// The block cipher itself sits behind the [BlockCipher] interface. A
// [Registry] without one rejects AES calls with
// fault.MissingCipherLibrary instead of panicking.
//
// ECB leaks plaintext block equality. It is here for compatibility with
// existing save files only.
package cipher
