// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/codec"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
	"github.com/bureau-foundation/savepatch/lib/varint"
)

// savedFor locates blob and captures it with import metadata.
func savedFor(t *testing.T, blob []byte) *Saved {
	t.Helper()
	split, err := envelope.Locate(blob)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	saved := NewSaved(split)
	saved.SourcePath = "/saves/slot1.dat"
	saved.SourceDigest = binhash.Sum(blob)
	saved.Algorithm = cipher.AESECBPKCS7
	saved.Encoding = textcodec.Base64URL
	saved.ImportedAt = time.Unix(1_760_000_000, 0)
	return saved
}

// largeBlob has a long zero-filled header, which every compressor
// shrinks.
func largeBlob() []byte {
	blob := make([]byte, 8192)
	blob = append(blob, envelope.StringRecordTag, 0x00, 0x00, 0x00, 0x00)
	payload := strings.Repeat("QUFBQUFB", 64)
	blob = varint.Append(blob, uint32(len(payload)))
	blob = append(blob, payload...)
	return append(blob, make([]byte, 4096)...)
}

func TestStoreRoundTrip(t *testing.T) {
	blobs := map[string][]byte{
		"small": buildBlob("68656c6c6f"),
		"large": largeBlob(),
	}

	for blobName, blob := range blobs {
		for _, compression := range []string{"auto", "none", "lz4", "zstd"} {
			t.Run(blobName+"/"+compression, func(t *testing.T) {
				store := NewStore(filepath.Join(t.TempDir(), "state", "session"))
				if err := store.SetCompression(compression); err != nil {
					t.Fatalf("SetCompression: %v", err)
				}

				original := savedFor(t, blob)
				if err := store.Save(original); err != nil {
					t.Fatalf("Save: %v", err)
				}

				loaded, err := store.Load()
				if err != nil {
					t.Fatalf("Load: %v", err)
				}
				if !bytes.Equal(loaded.Split().Reassemble(), blob) {
					t.Error("loaded split does not reassemble the blob")
				}
				if loaded.SourcePath != original.SourcePath || loaded.SourceDigest != original.SourceDigest {
					t.Errorf("source = (%q, %s), want (%q, %s)",
						loaded.SourcePath, loaded.SourceDigest, original.SourcePath, original.SourceDigest)
				}
				if loaded.Algorithm != cipher.AESECBPKCS7 || loaded.Encoding != textcodec.Base64URL {
					t.Errorf("transforms = (%s, %s)", loaded.Algorithm, loaded.Encoding)
				}
				if !loaded.ImportedAt.Equal(original.ImportedAt) {
					t.Errorf("ImportedAt = %v, want %v", loaded.ImportedAt, original.ImportedAt)
				}
			})
		}
	}
}

func TestStoreCompressesLargeSessions(t *testing.T) {
	tests := []struct {
		compression string
		want        CompressionTag
	}{
		{"auto", CompressionZstd},
		{"zstd", CompressionZstd},
		{"lz4", CompressionLZ4},
		{"none", CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.compression, func(t *testing.T) {
			store := NewStore(filepath.Join(t.TempDir(), "session"))
			if err := store.SetCompression(tt.compression); err != nil {
				t.Fatalf("SetCompression: %v", err)
			}
			if err := store.Save(savedFor(t, largeBlob())); err != nil {
				t.Fatalf("Save: %v", err)
			}

			data, err := os.ReadFile(store.Path())
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !bytes.HasPrefix(data, fileMagic[:]) {
				t.Fatalf("file does not start with the session magic")
			}
			if got := CompressionTag(data[len(fileMagic)]); got != tt.want {
				t.Errorf("compression tag = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStoreFilePermissions(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "session"))
	if err := store.Save(savedFor(t, buildBlob("x"))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("session file mode = %o, want 600", mode)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session"))

	_, err := store.Load()
	if !errors.Is(err, fault.ErrNoEnvelopeLoaded) {
		t.Errorf("Load error = %v, want NoEnvelopeLoaded", err)
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session"))
	if err := store.Save(savedFor(t, buildBlob("x"))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, fault.ErrNoEnvelopeLoaded) {
		t.Errorf("Load after Clear error = %v, want NoEnvelopeLoaded", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session"))
	if err := store.Save(savedFor(t, buildBlob("first"))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(savedFor(t, buildBlob("second"))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ExtractedText != "second" {
		t.Errorf("ExtractedText = %q, want second", loaded.ExtractedText)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the session file", len(entries))
	}
}

func TestStoreRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	if err := os.WriteFile(path, []byte("definitely not a session"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := NewStore(path).Load()
	if err == nil || errors.Is(err, fault.ErrNoEnvelopeLoaded) {
		t.Errorf("Load error = %v, want a format error", err)
	}
}

func TestStoreRejectsInconsistentSession(t *testing.T) {
	saved := savedFor(t, buildBlob("hello"))
	saved.PayloadEnd++

	body, err := codec.Marshal(saved)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data := append(fileMagic[:], byte(CompressionNone))
	data = varint.Append(data, uint32(len(body)))
	data = append(data, body...)

	path := filepath.Join(t.TempDir(), "session")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = NewStore(path).Load()
	if err == nil || !strings.Contains(err.Error(), "corrupt") {
		t.Errorf("Load error = %v, want a corrupt-session error", err)
	}
}

func TestStoreRejectsOversizedBody(t *testing.T) {
	data := append(fileMagic[:], byte(CompressionZstd))
	data = varint.Append(data, 0xffffffff)
	data = append(data, 0x00, 0x01, 0x02)

	path := filepath.Join(t.TempDir(), "session")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := NewStore(path).Load()
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("Load error = %v, want a body length error", err)
	}
}

func TestStoreBodyIsDiagnosable(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session"))
	if err := store.Save(savedFor(t, buildBlob("68656c6c6f"))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	body, err := store.Body()
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	notation, err := codec.Diagnose(body)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	for _, want := range []string{`"extracted_text"`, `"68656c6c6f"`, `"aes-ecb-pkcs7"`} {
		if !strings.Contains(notation, want) {
			t.Errorf("diagnostic notation missing %s: %s", want, notation)
		}
	}
}

func TestSetCompressionRejectsUnknown(t *testing.T) {
	if err := NewStore("unused").SetCompression("brotli"); err == nil {
		t.Error("SetCompression(brotli) should fail")
	}
}

func TestCompressionTagNames(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompressionTag(tag.String())
		if err != nil {
			t.Fatalf("ParseCompressionTag(%q): %v", tag, err)
		}
		if parsed != tag {
			t.Errorf("ParseCompressionTag(%q) = %s", tag, parsed)
		}
	}
}
