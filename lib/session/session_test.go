// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/pipeline"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
	"github.com/bureau-foundation/savepatch/lib/varint"
)

const testKey = "0123456789abcdef"

var aesConfig = pipeline.Config{Algorithm: cipher.AESECBPKCS7, Key: testKey, Encoding: textcodec.Base64}

// buildBlob wraps payload in a string record with a fixed header and
// footer.
func buildBlob(payload string) []byte {
	blob := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}
	blob = append(blob, envelope.StringRecordTag, 0x01, 0x00, 0x00, 0x00)
	blob = varint.Append(blob, uint32(len(payload)))
	blob = append(blob, payload...)
	blob = append(blob, 0x0b, 0x0c)
	return blob
}

// encryptedBlob returns a blob whose payload is plain encrypted under
// aesConfig.
func encryptedBlob(t *testing.T, plain string) []byte {
	t.Helper()
	encrypted, err := pipeline.EncryptText(plain, aesConfig)
	if err != nil {
		t.Fatalf("EncryptText: %v", err)
	}
	return buildBlob(encrypted)
}

func TestExportBeforeImport(t *testing.T) {
	session := New()

	_, err := session.Export(`{"a":1}`, aesConfig)
	if !errors.Is(err, fault.ErrNoEnvelopeLoaded) {
		t.Errorf("Export error = %v, want NoEnvelopeLoaded", err)
	}
	if _, err := session.Decrypt(aesConfig); !errors.Is(err, fault.ErrNoEnvelopeLoaded) {
		t.Errorf("Decrypt error = %v, want NoEnvelopeLoaded", err)
	}
	if session.Loaded() || session.Split() != nil {
		t.Error("new session should hold no envelope")
	}
}

func TestImport(t *testing.T) {
	blob := encryptedBlob(t, `{"gold":10}`)
	session := New()

	result, err := session.Import(blob, aesConfig)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if result.Plaintext != `{"gold":10}` {
		t.Errorf("Plaintext = %q", result.Plaintext)
	}
	if result.SourceDigest != binhash.Sum(blob) {
		t.Error("SourceDigest does not match the blob")
	}
	if result.Diagnostics.TotalSize != len(blob) || result.Diagnostics.HeaderSize != 14 || result.Diagnostics.FooterSize != 2 {
		t.Errorf("Diagnostics = %+v", result.Diagnostics)
	}
	if !session.Loaded() {
		t.Error("session should be loaded after Import")
	}
}

func TestImportThenExportRoundTrip(t *testing.T) {
	blob := encryptedBlob(t, `{"gold":10,"name":"hero"}`)
	session := New()

	result, err := session.Import(blob, aesConfig)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	// Exporting the unchanged plaintext reproduces the blob exactly.
	unchanged, err := session.Export(result.Plaintext, aesConfig)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.Equal(unchanged, blob) {
		t.Error("exporting unchanged plaintext did not reproduce the blob")
	}

	// An edited, pretty-printed document is compacted before encryption.
	edited := "{\n  \"gold\": 99999,\n  \"name\": \"hero\" // renamed later\n}"
	exported, err := session.Export(edited, aesConfig)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	reimported, err := New().Import(exported, aesConfig)
	if err != nil {
		t.Fatalf("re-Import: %v", err)
	}
	if reimported.Plaintext != `{"gold":99999,"name":"hero"}` {
		t.Errorf("re-imported plaintext = %q", reimported.Plaintext)
	}
	if !bytes.Equal(exported[:14], blob[:14]) || !bytes.Equal(exported[len(exported)-2:], blob[len(blob)-2:]) {
		t.Error("export did not preserve header and footer")
	}
}

func TestFailedImportKeepsPreviousEnvelope(t *testing.T) {
	session := New()
	if _, err := session.Import(encryptedBlob(t, `{"first":true}`), aesConfig); err != nil {
		t.Fatalf("Import: %v", err)
	}
	before := session.Split()

	_, err := session.Import([]byte("no record here"), aesConfig)
	if !errors.Is(err, fault.ErrRecordNotFound) {
		t.Fatalf("Import error = %v, want RecordNotFound", err)
	}
	if session.Split() != before {
		t.Error("failed import replaced the retained envelope")
	}
}

func TestImportReplacesEnvelope(t *testing.T) {
	session := New()
	if _, err := session.Import(encryptedBlob(t, `{"first":true}`), aesConfig); err != nil {
		t.Fatalf("first Import: %v", err)
	}
	second := encryptedBlob(t, `{"second":true}`)
	if _, err := session.Import(second, aesConfig); err != nil {
		t.Fatalf("second Import: %v", err)
	}

	plain, err := session.Decrypt(aesConfig)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != `{"second":true}` {
		t.Errorf("retained envelope decrypts to %q, want the second blob", plain)
	}
}

func TestImportDecryptFailureRetainsEnvelope(t *testing.T) {
	blob := encryptedBlob(t, `{"gold":10,"items":["a","b","c"]}`)
	session := New()

	wrong := aesConfig
	wrong.Key = "fedcba9876543210"
	result, err := session.Import(blob, wrong)
	if !errors.Is(err, fault.ErrDecryptionFailed) {
		t.Fatalf("Import error = %v, want DecryptionFailed", err)
	}
	if result == nil || result.ExtractedText == "" || result.Plaintext != "" {
		t.Fatalf("partial result = %+v", result)
	}
	if !session.Loaded() {
		t.Fatal("envelope should be retained after a decrypt failure")
	}

	plain, err := session.Decrypt(aesConfig)
	if err != nil {
		t.Fatalf("Decrypt with the right key: %v", err)
	}
	if plain != `{"gold":10,"items":["a","b","c"]}` {
		t.Errorf("Decrypt = %q", plain)
	}
}

func TestExportInvalidJSON(t *testing.T) {
	session := New()
	if _, err := session.Import(encryptedBlob(t, `{"a":1}`), aesConfig); err != nil {
		t.Fatalf("Import: %v", err)
	}
	before := session.Split()

	_, err := session.Export(`{"a":`, aesConfig)
	if !errors.Is(err, fault.ErrInvalidJSON) {
		t.Errorf("Export error = %v, want InvalidJSON", err)
	}
	if session.Split() != before {
		t.Error("failed export changed the retained envelope")
	}
}

func TestLoadWithoutDecrypt(t *testing.T) {
	blob := buildBlob("68656c6c6f")
	session := New()

	result, err := session.Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.ExtractedText != "68656c6c6f" || result.Plaintext != "" {
		t.Errorf("Load result = %+v", result)
	}

	hexConfig := pipeline.Config{Algorithm: cipher.None, Encoding: textcodec.Hex}
	plain, err := session.Decrypt(hexConfig)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != "hello" {
		t.Errorf("Decrypt = %q, want hello", plain)
	}
}

func TestRestore(t *testing.T) {
	blob := encryptedBlob(t, `{"x":1}`)
	split, err := envelope.Locate(blob)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	session := Restore(split)
	exported, err := session.Export(`{"x":1}`, aesConfig)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.Equal(exported, blob) {
		t.Error("restored session did not reproduce the blob")
	}
}

func TestMissingCipherLibrary(t *testing.T) {
	session := &Session{Registry: &cipher.Registry{}}

	result, err := session.Import(buildBlob("AAAA"), aesConfig)
	if !errors.Is(err, fault.ErrMissingCipherLibrary) {
		t.Errorf("Import error = %v, want MissingCipherLibrary", err)
	}
	if result == nil || !session.Loaded() {
		t.Error("envelope should still be retained")
	}
}
