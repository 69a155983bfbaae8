// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline binds one cipher algorithm, one text encoding, and a
// key into a text-in, text-out transform pair. The same pipeline serves
// standalone text and envelope payloads.
package pipeline

import (
	"unicode/utf8"

	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
)

// Config selects the transforms a Pipeline applies. It is supplied
// fresh for each operation and has no identity of its own.
type Config struct {
	Algorithm cipher.Algorithm
	Key       string
	Encoding  textcodec.Encoding
}

// ParseConfig builds a Config from the names used in flags and config
// files.
func ParseConfig(algorithm, key, encoding string) (Config, error) {
	parsedAlgorithm, err := cipher.ParseAlgorithm(algorithm)
	if err != nil {
		return Config{}, err
	}
	parsedEncoding, err := textcodec.ParseEncoding(encoding)
	if err != nil {
		return Config{}, err
	}
	return Config{Algorithm: parsedAlgorithm, Key: key, Encoding: parsedEncoding}, nil
}

// Pipeline applies a Config. It holds no state besides its
// configuration and may be reused freely.
type Pipeline struct {
	config   Config
	registry *cipher.Registry
}

// New returns a Pipeline for config backed by the default cipher
// registry.
func New(config Config) *Pipeline {
	return NewWithRegistry(config, cipher.NewRegistry())
}

// NewWithRegistry returns a Pipeline that dispatches through registry.
func NewWithRegistry(config Config, registry *cipher.Registry) *Pipeline {
	return &Pipeline{config: config, registry: registry}
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Encrypt turns plain text into its encrypted, encoded form.
func (p *Pipeline) Encrypt(plain string) (string, error) {
	if err := p.checkEncoding(); err != nil {
		return "", err
	}
	if !utf8.ValidString(plain) {
		return "", fault.Newf(fault.InvalidUTF8, "plain text is not valid UTF-8")
	}
	return p.registry.Encrypt(p.config.Algorithm, []byte(plain), p.config.Key, p.config.Encoding)
}

// Decrypt reverses Encrypt. Under AES, a result that is not valid UTF-8
// is reported as fault.DecryptionFailed: padding that happens to check
// out under a wrong key must not surface as silently wrong plaintext.
func (p *Pipeline) Decrypt(text string) (string, error) {
	if err := p.checkEncoding(); err != nil {
		return "", err
	}
	plain, err := p.registry.Decrypt(p.config.Algorithm, text, p.config.Key, p.config.Encoding)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		if p.config.Algorithm == cipher.AESECBPKCS7 {
			return "", fault.Newf(fault.DecryptionFailed,
				"decrypted %d bytes are not valid UTF-8 (wrong key?)", len(plain))
		}
		return "", fault.Newf(fault.InvalidUTF8,
			"decoded %d bytes are not valid UTF-8", len(plain))
	}
	return string(plain), nil
}

func (p *Pipeline) checkEncoding() error {
	if !p.config.Encoding.Valid() {
		return fault.Newf(fault.UnknownEncoding, "unknown text encoding %d", uint8(p.config.Encoding))
	}
	return nil
}

// EncryptText encrypts plain under config.
func EncryptText(plain string, config Config) (string, error) {
	return New(config).Encrypt(plain)
}

// DecryptText decrypts text under config.
func DecryptText(text string, config Config) (string, error) {
	return New(config).Decrypt(text)
}
