// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cipher

import (
	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
)

// Registry dispatches an [Algorithm] to its transform and renders the
// result with a text encoding. The zero value has no block cipher and
// supports only [None].
type Registry struct {
	// Cipher performs AES-ECB-PKCS7. When nil, every AESECBPKCS7 call
	// fails with fault.MissingCipherLibrary.
	Cipher BlockCipher
}

// NewRegistry returns a Registry backed by [AESECB].
func NewRegistry() *Registry {
	return &Registry{Cipher: AESECB{}}
}

// Encrypt transforms plaintext under algorithm and renders the result as
// text in encoding. For AESECBPKCS7 the raw ciphertext bytes are encoded
// directly, so hex output is the hex of the ciphertext.
func (r *Registry) Encrypt(algorithm Algorithm, plaintext []byte, key string, encoding textcodec.Encoding) (string, error) {
	switch algorithm {
	case None:
		return textcodec.Encode(encoding, plaintext)
	case AESECBPKCS7:
		if err := r.checkAES(encoding); err != nil {
			return "", err
		}
		ciphertext, err := r.Cipher.Encrypt(plaintext, []byte(key))
		if err != nil {
			return "", err
		}
		return textcodec.Encode(encoding, ciphertext)
	default:
		return "", unsupported(algorithm)
	}
}

// Decrypt parses text in encoding and reverses the algorithm's transform.
func (r *Registry) Decrypt(algorithm Algorithm, text string, key string, encoding textcodec.Encoding) ([]byte, error) {
	switch algorithm {
	case None:
		return textcodec.Decode(encoding, text)
	case AESECBPKCS7:
		if err := r.checkAES(encoding); err != nil {
			return nil, err
		}
		ciphertext, err := textcodec.Decode(encoding, text)
		if err != nil {
			return nil, err
		}
		return r.Cipher.Decrypt(ciphertext, []byte(key))
	default:
		return nil, unsupported(algorithm)
	}
}

// checkAES verifies the registry can run AES with the given encoding.
// AES output is arbitrary binary, which the utf8 encoding cannot carry.
func (r *Registry) checkAES(encoding textcodec.Encoding) error {
	if r.Cipher == nil {
		return fault.Newf(fault.MissingCipherLibrary,
			"no block cipher available for %s", AESECBPKCS7)
	}
	if !encoding.Valid() {
		return fault.Newf(fault.UnknownEncoding, "unknown text encoding %d", uint8(encoding))
	}
	if encoding == textcodec.UTF8 {
		return fault.Newf(fault.UnknownEncoding,
			"%s ciphertext is binary and cannot use the utf8 encoding (want base64, base64url, or hex)",
			AESECBPKCS7)
	}
	return nil
}

func unsupported(algorithm Algorithm) error {
	return fault.Newf(fault.UnsupportedAlgorithm, "unsupported cipher algorithm %s", algorithm)
}
