// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package textcodec converts between raw bytes and the display strings
// stored in (or typed into) a save payload. Four encodings are supported:
//
//   - utf8: identity. Encoding fails on bytes that are not valid UTF-8.
//   - base64: standard alphabet with padding.
//   - base64url: standard base64 with + and / replaced by - and _, and
//     trailing padding removed. Decoding restores the padding first.
//   - hex: lowercase, two characters per byte.
//
// The encodings are a closed set. Unknown names fail with
// fault.UnknownEncoding at parse time so a typo never reaches a codec.
package textcodec

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/savepatch/lib/fault"
)

// Encoding identifies one of the supported text encodings.
type Encoding uint8

const (
	// UTF8 passes text through unchanged.
	UTF8 Encoding = iota

	// Base64 is RFC 4648 standard base64 with padding.
	Base64

	// Base64URL is the URL-safe alphabet without padding.
	Base64URL

	// Hex is lowercase hexadecimal.
	Hex
)

// String returns the canonical name of an encoding.
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf8"
	case Base64:
		return "base64"
	case Base64URL:
		return "base64url"
	case Hex:
		return "hex"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// Valid reports whether e is one of the defined encodings.
func (e Encoding) Valid() bool {
	return e <= Hex
}

// Encodings returns every supported encoding in display order.
func Encodings() []Encoding {
	return []Encoding{UTF8, Base64, Base64URL, Hex}
}

// ParseEncoding maps a name to an Encoding. Matching ignores case and
// surrounding whitespace; "plain" is accepted as an alias for utf8.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf8", "utf-8", "plain":
		return UTF8, nil
	case "base64":
		return Base64, nil
	case "base64url":
		return Base64URL, nil
	case "hex":
		return Hex, nil
	default:
		return 0, fault.Newf(fault.UnknownEncoding,
			"unknown text encoding %q (want utf8, base64, base64url, or hex)", name)
	}
}

// MarshalText implements encoding.TextMarshaler so encodings read
// naturally in YAML and JSON.
func (e Encoding) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fault.Newf(fault.UnknownEncoding, "unknown text encoding %d", uint8(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	parsed, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Encode renders data as text in the given encoding.
func Encode(encoding Encoding, data []byte) (string, error) {
	switch encoding {
	case UTF8:
		if !utf8.Valid(data) {
			return "", fault.Newf(fault.InvalidUTF8,
				"%d bytes are not valid UTF-8 and cannot be shown as plain text", len(data))
		}
		return string(data), nil
	case Base64:
		return base64.StdEncoding.EncodeToString(data), nil
	case Base64URL:
		return toURLAlphabet(base64.StdEncoding.EncodeToString(data)), nil
	case Hex:
		return hex.EncodeToString(data), nil
	default:
		return "", fault.Newf(fault.UnknownEncoding, "unknown text encoding %d", uint8(encoding))
	}
}

// Decode parses text in the given encoding back into bytes.
func Decode(encoding Encoding, text string) ([]byte, error) {
	switch encoding {
	case UTF8:
		if !utf8.ValidString(text) {
			return nil, fault.Newf(fault.InvalidUTF8, "text is not valid UTF-8")
		}
		return []byte(text), nil
	case Base64:
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fault.Newf(fault.InvalidEncoding, "decoding base64: %w", err)
		}
		return decoded, nil
	case Base64URL:
		decoded, err := base64.StdEncoding.DecodeString(fromURLAlphabet(text))
		if err != nil {
			return nil, fault.Newf(fault.InvalidEncoding, "decoding base64url: %w", err)
		}
		return decoded, nil
	case Hex:
		return decodeHex(text)
	default:
		return nil, fault.Newf(fault.UnknownEncoding, "unknown text encoding %d", uint8(encoding))
	}
}

// toURLAlphabet converts standard padded base64 to the URL-safe,
// unpadded form.
func toURLAlphabet(standard string) string {
	replaced := strings.NewReplacer("+", "-", "/", "_").Replace(standard)
	return strings.TrimRight(replaced, "=")
}

// fromURLAlphabet reverses toURLAlphabet: restores (4 - len%4) % 4
// padding characters and the standard alphabet.
func fromURLAlphabet(urlSafe string) string {
	padding := (4 - len(urlSafe)%4) % 4
	replaced := strings.NewReplacer("-", "+", "_", "/").Replace(urlSafe)
	return replaced + strings.Repeat("=", padding)
}

// decodeHex parses hex strictly: an even number of characters, every pair
// a valid hex byte. Upper and lower case digits are both accepted.
func decodeHex(text string) ([]byte, error) {
	if len(text)%2 != 0 {
		return nil, fault.Newf(fault.InvalidEncoding,
			"hex text has odd length %d", len(text))
	}
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return nil, fault.Newf(fault.InvalidEncoding, "decoding hex: %w", err)
	}
	return decoded, nil
}
