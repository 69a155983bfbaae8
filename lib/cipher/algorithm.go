// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cipher

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/savepatch/lib/fault"
)

// Algorithm identifies a cipher transform.
type Algorithm uint8

const (
	// None applies no encryption. Text still passes through the selected
	// text encoding.
	None Algorithm = iota

	// AESECBPKCS7 is AES in electronic-codebook mode with PKCS#7 padding,
	// keyed directly by the UTF-8 bytes of the key string.
	AESECBPKCS7
)

// String returns the canonical name used in flags and config files.
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case AESECBPKCS7:
		return "aes-ecb-pkcs7"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// Algorithms returns every supported algorithm in display order.
func Algorithms() []Algorithm {
	return []Algorithm{None, AESECBPKCS7}
}

// ParseAlgorithm maps a name to an Algorithm. Matching ignores case and
// surrounding whitespace. Both "aes-ecb-pkcs7" and "aesEcbPkcs7" name the
// AES transform.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return None, nil
	case "aes-ecb-pkcs7", "aesecbpkcs7":
		return AESECBPKCS7, nil
	default:
		return 0, fault.Newf(fault.UnsupportedAlgorithm,
			"unsupported cipher algorithm %q (want none or aes-ecb-pkcs7)", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	switch a {
	case None, AESECBPKCS7:
		return []byte(a.String()), nil
	default:
		return nil, fault.Newf(fault.UnsupportedAlgorithm, "unsupported cipher algorithm %d", uint8(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
