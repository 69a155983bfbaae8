// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Savepatch edits the JSON payload carried inside binary save files.
//
// A supported save embeds its state as a string record: the tag byte
// 0x06, a 4-byte record id, a varint length, and that many bytes of
// UTF-8 text, usually AES-ECB encrypted and base64 encoded. Import
// locates the record and decrypts it; export encrypts an edited
// document and splices it back with a rewritten length prefix, leaving
// every other byte of the file intact.
//
// Run "savepatch --help" for the command list.
package main
