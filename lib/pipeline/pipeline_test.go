// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
)

const testKey = "0123456789abcdef"

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig("aesEcbPkcs7", testKey, "plain")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	want := Config{Algorithm: cipher.AESECBPKCS7, Key: testKey, Encoding: textcodec.UTF8}
	if config != want {
		t.Errorf("ParseConfig = %+v, want %+v", config, want)
	}

	if _, err := ParseConfig("des", "", "hex"); !errors.Is(err, fault.ErrUnsupportedAlgorithm) {
		t.Errorf("ParseConfig(des) error = %v, want UnsupportedAlgorithm", err)
	}
	if _, err := ParseConfig("none", "", "rot13"); !errors.Is(err, fault.ErrUnknownEncoding) {
		t.Errorf("ParseConfig(rot13) error = %v, want UnknownEncoding", err)
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"hello",
		`{"level":12,"name":"勇者","inventory":["potion","sword"]}`,
		"line one\nline two\ttabbed",
	}

	for _, algorithm := range cipher.Algorithms() {
		for _, encoding := range textcodec.Encodings() {
			if algorithm == cipher.AESECBPKCS7 && encoding == textcodec.UTF8 {
				continue
			}
			config := Config{Algorithm: algorithm, Key: testKey, Encoding: encoding}
			for _, text := range texts {
				encrypted, err := EncryptText(text, config)
				if err != nil {
					t.Fatalf("EncryptText(%s/%s): %v", algorithm, encoding, err)
				}
				decrypted, err := DecryptText(encrypted, config)
				if err != nil {
					t.Fatalf("DecryptText(%s/%s): %v", algorithm, encoding, err)
				}
				if decrypted != text {
					t.Errorf("%s/%s round trip = %q, want %q", algorithm, encoding, decrypted, text)
				}
			}
		}
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	plaintext := `{"player":"hero","gold":12345,"flags":[true,false,true]}`
	wrongKeys := []string{
		"fedcba9876543210",
		"0123456789abcdeF",
		"aaaaaaaaaaaaaaaa",
		"0123456789abcdef01234567",
	}

	for _, encoding := range []textcodec.Encoding{textcodec.Base64, textcodec.Base64URL, textcodec.Hex} {
		config := Config{Algorithm: cipher.AESECBPKCS7, Key: testKey, Encoding: encoding}
		encrypted, err := EncryptText(plaintext, config)
		if err != nil {
			t.Fatalf("EncryptText: %v", err)
		}

		for _, wrong := range wrongKeys {
			wrongConfig := config
			wrongConfig.Key = wrong
			_, err := DecryptText(encrypted, wrongConfig)
			if !errors.Is(err, fault.ErrDecryptionFailed) {
				t.Errorf("%s with key %q: error = %v, want DecryptionFailed", encoding, wrong, err)
			}
		}
	}
}

func TestDecrypt_NoneInvalidUTF8(t *testing.T) {
	config := Config{Algorithm: cipher.None, Encoding: textcodec.Hex}

	_, err := DecryptText("fffe", config)
	if !errors.Is(err, fault.ErrInvalidUTF8) {
		t.Errorf("DecryptText error = %v, want InvalidUTF8", err)
	}
}

func TestUnknownEncodingValue(t *testing.T) {
	config := Config{Algorithm: cipher.None, Encoding: textcodec.Encoding(99)}

	if _, err := EncryptText("x", config); !errors.Is(err, fault.ErrUnknownEncoding) {
		t.Errorf("EncryptText error = %v, want UnknownEncoding", err)
	}
	if _, err := DecryptText("x", config); !errors.Is(err, fault.ErrUnknownEncoding) {
		t.Errorf("DecryptText error = %v, want UnknownEncoding", err)
	}
}

func TestMissingCipherLibrary(t *testing.T) {
	config := Config{Algorithm: cipher.AESECBPKCS7, Key: testKey, Encoding: textcodec.Base64}
	pipeline := NewWithRegistry(config, &cipher.Registry{})

	if _, err := pipeline.Encrypt("x"); !errors.Is(err, fault.ErrMissingCipherLibrary) {
		t.Errorf("Encrypt error = %v, want MissingCipherLibrary", err)
	}
	if _, err := pipeline.Decrypt("AAAAAAAAAAAAAAAAAAAAAA=="); !errors.Is(err, fault.ErrMissingCipherLibrary) {
		t.Errorf("Decrypt error = %v, want MissingCipherLibrary", err)
	}
}

func TestEndToEnd_HexPayload(t *testing.T) {
	// A blob whose payload is the hex text of "hello".
	buffer := []byte{0x06, 0x00, 0x00, 0x00, 0x00, 0x0a}
	buffer = append(buffer, "68656c6c6f"...)
	buffer = append(buffer, 0xff, 0xff)
	config := Config{Algorithm: cipher.None, Encoding: textcodec.Hex}

	split, err := envelope.Locate(buffer)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if split.ExtractedText != "68656c6c6f" {
		t.Fatalf("ExtractedText = %q, want 68656c6c6f", split.ExtractedText)
	}

	plain, err := DecryptText(split.ExtractedText, config)
	if err != nil {
		t.Fatalf("DecryptText: %v", err)
	}
	if plain != "hello" {
		t.Errorf("DecryptText = %q, want hello", plain)
	}

	reencrypted, err := EncryptText(plain, config)
	if err != nil {
		t.Fatalf("EncryptText: %v", err)
	}
	if reencrypted != "68656c6c6f" {
		t.Errorf("EncryptText = %q, want 68656c6c6f", reencrypted)
	}

	patched, err := envelope.Patch(split, reencrypted)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !bytes.Equal(patched, buffer) {
		t.Errorf("patched = % x, want % x", patched, buffer)
	}
}

func TestEndToEnd_AESResizesEnvelope(t *testing.T) {
	config := Config{Algorithm: cipher.AESECBPKCS7, Key: testKey, Encoding: textcodec.Base64}
	original, err := EncryptText(`{"gold":1}`, config)
	if err != nil {
		t.Fatalf("EncryptText: %v", err)
	}

	buffer := []byte{0x01, 0x02, 0x06, 0x10, 0x20, 0x30, 0x40, byte(len(original))}
	buffer = append(buffer, original...)
	buffer = append(buffer, 0x0b, 0x0b)

	split, err := envelope.Locate(buffer)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	plain, err := DecryptText(split.ExtractedText, config)
	if err != nil {
		t.Fatalf("DecryptText: %v", err)
	}
	if plain != `{"gold":1}` {
		t.Fatalf("DecryptText = %q", plain)
	}

	edited := `{"gold":999999999,"note":"a longer payload that spans several AES blocks"}`
	encrypted, err := EncryptText(edited, config)
	if err != nil {
		t.Fatalf("EncryptText: %v", err)
	}
	patched, err := envelope.Patch(split, encrypted)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}

	relocated, err := envelope.Locate(patched)
	if err != nil {
		t.Fatalf("Locate(patched): %v", err)
	}
	roundTripped, err := DecryptText(relocated.ExtractedText, config)
	if err != nil {
		t.Fatalf("DecryptText(patched): %v", err)
	}
	if roundTripped != edited {
		t.Errorf("patched payload decrypts to %q, want %q", roundTripped, edited)
	}
	if !bytes.Equal(relocated.Footer, []byte{0x0b, 0x0b}) {
		t.Errorf("footer = % x, want 0b 0b", relocated.Footer)
	}
}
