// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"

	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/jsonedit"
	"github.com/bureau-foundation/savepatch/lib/pipeline"
)

// ImportResult describes a blob that was located and, when a pipeline
// config was supplied, decrypted.
type ImportResult struct {
	// ExtractedText is the payload exactly as stored in the blob.
	ExtractedText string

	// Plaintext is ExtractedText after decryption. Empty after Load.
	Plaintext string

	// Diagnostics is the record geometry within the blob.
	Diagnostics envelope.Diagnostics

	// SourceDigest is the BLAKE3 digest of the whole blob.
	SourceDigest binhash.Digest
}

// Session carries the most recently located envelope from import to
// export. The zero value is ready to use and holds no envelope.
//
// A Session is not safe for concurrent use.
type Session struct {
	// Registry performs cipher transforms. Nil selects
	// cipher.NewRegistry().
	Registry *cipher.Registry

	last *envelope.Split
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Restore returns a session that already holds split, as if it had
// just been imported. Used to resume from a persisted session file.
func Restore(split *envelope.Split) *Session {
	return &Session{last: split}
}

// Loaded reports whether an envelope has been imported.
func (s *Session) Loaded() bool {
	return s.last != nil
}

// Split returns the retained envelope, or nil before the first
// successful import.
func (s *Session) Split() *envelope.Split {
	return s.last
}

// Load locates the string record in raw and retains it, replacing any
// previously retained envelope. On failure the session is unchanged.
func (s *Session) Load(raw []byte) (*ImportResult, error) {
	split, err := envelope.Locate(raw)
	if err != nil {
		return nil, err
	}
	s.last = split
	return &ImportResult{
		ExtractedText: split.ExtractedText,
		Diagnostics:   split.Diagnostics(),
		SourceDigest:  binhash.Sum(raw),
	}, nil
}

// Import loads raw and decrypts its payload under config.
//
// The envelope is retained as soon as it is located. If decryption then
// fails, Import returns the partial result (without Plaintext) together
// with the error, and the session stays loaded: a retry with a
// corrected key or encoding does not need the blob again.
func (s *Session) Import(raw []byte, config pipeline.Config) (*ImportResult, error) {
	result, err := s.Load(raw)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.pipeline(config).Decrypt(result.ExtractedText)
	if err != nil {
		return result, fmt.Errorf("decrypting extracted payload: %w", err)
	}
	result.Plaintext = plaintext
	return result, nil
}

// Decrypt decrypts the retained payload under config without
// re-reading the blob.
func (s *Session) Decrypt(config pipeline.Config) (string, error) {
	if s.last == nil {
		return "", noEnvelope()
	}
	return s.pipeline(config).Decrypt(s.last.ExtractedText)
}

// Export compacts editedJSON, encrypts it under config, and patches it
// into the retained envelope. The retained envelope is not modified, so
// Export may be called repeatedly.
func (s *Session) Export(editedJSON string, config pipeline.Config) ([]byte, error) {
	if s.last == nil {
		return nil, noEnvelope()
	}

	compact, err := jsonedit.Compact(editedJSON)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.pipeline(config).Encrypt(compact)
	if err != nil {
		return nil, fmt.Errorf("encrypting edited payload: %w", err)
	}

	return envelope.Patch(s.last, encrypted)
}

func (s *Session) pipeline(config pipeline.Config) *pipeline.Pipeline {
	registry := s.Registry
	if registry == nil {
		registry = cipher.NewRegistry()
	}
	return pipeline.NewWithRegistry(config, registry)
}

func noEnvelope() error {
	return fault.Newf(fault.NoEnvelopeLoaded,
		"no save file has been imported (run import first)")
}
