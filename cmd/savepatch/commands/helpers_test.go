// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/pipeline"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
	"github.com/bureau-foundation/savepatch/lib/varint"
)

const (
	testKey  = "0123456789abcdef"
	wrongKey = "fedcba9876543210"
)

var aesBase64 = pipeline.Config{Algorithm: cipher.AESECBPKCS7, Key: testKey, Encoding: textcodec.Base64}

// testEnv is an isolated configuration: a config file naming a session
// path and export filename inside a temp directory.
type testEnv struct {
	dir         string
	configPath  string
	sessionPath string
	exportPath  string
}

// newTestEnv writes a config file, points SAVEPATCH_CONFIG at it,
// clears SAVEPATCH_KEY, and makes the key prompt read from a
// non-terminal.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:         dir,
		configPath:  filepath.Join(dir, "savepatch.yaml"),
		sessionPath: filepath.Join(dir, "state", "session"),
		exportPath:  filepath.Join(dir, "save_export.dat"),
	}

	content := "default_profile: game\n" +
		"session_path: " + env.sessionPath + "\n" +
		"export_filename: " + env.exportPath + "\n" +
		"profiles:\n" +
		"  game:\n" +
		"    algorithm: aes-ecb-pkcs7\n" +
		"    encoding: base64\n" +
		"  plain:\n" +
		"    algorithm: none\n" +
		"    encoding: hex\n"
	writeFile(t, env.configPath, content)

	t.Setenv("SAVEPATCH_CONFIG", env.configPath)
	t.Setenv(keyEnvironmentVariable, "")

	promptFile, err := os.Open(env.configPath)
	if err != nil {
		t.Fatalf("open prompt stand-in: %v", err)
	}
	savedPrompt := keyPromptInput
	keyPromptInput = promptFile
	t.Cleanup(func() {
		keyPromptInput = savedPrompt
		promptFile.Close()
	})

	return env
}

// path returns name inside the environment's directory.
func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeBytes(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildBlob wraps payload in a string record with a 9-byte preamble and
// a 2-byte footer. The record's length prefix sits at offset 14.
func buildBlob(payload string) []byte {
	blob := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}
	blob = append(blob, envelope.StringRecordTag, 0x01, 0x00, 0x00, 0x00)
	blob = varint.Append(blob, uint32(len(payload)))
	blob = append(blob, payload...)
	return append(blob, 0x0b, 0x0c)
}

// encryptedBlob returns a blob whose payload is plain under config.
func encryptedBlob(t *testing.T, plain string, config pipeline.Config) []byte {
	t.Helper()
	encrypted, err := pipeline.EncryptText(plain, config)
	if err != nil {
		t.Fatalf("EncryptText: %v", err)
	}
	return buildBlob(encrypted)
}
