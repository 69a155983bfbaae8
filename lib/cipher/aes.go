// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cipher

import (
	"crypto/aes"
	"fmt"

	"github.com/andreburgaud/crypt2go/ecb"
	"github.com/andreburgaud/crypt2go/padding"

	"github.com/bureau-foundation/savepatch/lib/fault"
)

// BlockCipher is the symmetric encryption capability the registry
// depends on. Implementations own mode and padding; callers hand over raw
// plaintext and receive raw ciphertext.
type BlockCipher interface {
	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(ciphertext, key []byte) ([]byte, error)
}

// AESECB is AES in ECB mode with PKCS#7 padding. The key is used as
// given and must be 16, 24, or 32 bytes.
type AESECB struct{}

// Encrypt pads plaintext to a whole number of blocks and encrypts each
// block independently.
func (AESECB) Encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, invalidKey(key)
	}

	// The full slice expression keeps Pad's append from writing into the
	// caller's spare capacity.
	padded, err := padding.NewPkcs7Padding(aes.BlockSize).Pad(plaintext[:len(plaintext):len(plaintext)])
	if err != nil {
		return nil, fmt.Errorf("padding plaintext: %w", err)
	}

	ciphertext := make([]byte, len(padded))
	ecb.NewECBEncrypter(block).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt reverses Encrypt. A ciphertext that is empty or not a whole
// number of blocks, or whose padding does not check out after decryption,
// fails with fault.DecryptionFailed.
func (AESECB) Decrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, invalidKey(key)
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fault.Newf(fault.DecryptionFailed,
			"ciphertext is %d bytes, not a positive multiple of the %d-byte block size",
			len(ciphertext), aes.BlockSize)
	}

	padded := make([]byte, len(ciphertext))
	ecb.NewECBDecrypter(block).CryptBlocks(padded, ciphertext)

	if pad := padded[len(padded)-1]; pad == 0 || int(pad) > aes.BlockSize {
		return nil, fault.Newf(fault.DecryptionFailed,
			"invalid PKCS#7 padding byte 0x%02x (wrong key or corrupt ciphertext)", pad)
	}
	plaintext, err := padding.NewPkcs7Padding(aes.BlockSize).Unpad(padded)
	if err != nil {
		return nil, fault.Newf(fault.DecryptionFailed,
			"invalid PKCS#7 padding (wrong key or corrupt ciphertext): %w", err)
	}
	return plaintext, nil
}

func invalidKey(key []byte) error {
	return fault.Newf(fault.InvalidKey,
		"AES key is %d bytes, want 16, 24, or 32", len(key))
}
