// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/codec"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
	"github.com/bureau-foundation/savepatch/lib/varint"
)

// fileMagic opens every session file.
var fileMagic = [4]byte{'S', 'V', 'P', 'S'}

// maxBodySize bounds the declared body length of a session file before
// anything is allocated for it. Sessions hold one save file's header
// and footer, far below this.
const maxBodySize = 1 << 30

// savedVersion is the current Saved schema version.
const savedVersion = 1

// Saved is the on-disk form of a retained envelope plus what is known
// about the blob it came from.
type Saved struct {
	Version int `cbor:"version"`

	Header             []byte `cbor:"header"`
	ExtractedText      string `cbor:"extracted_text"`
	Footer             []byte `cbor:"footer"`
	LengthPrefixOffset int    `cbor:"length_prefix_offset"`
	PayloadStart       int    `cbor:"payload_start"`
	PayloadEnd         int    `cbor:"payload_end"`

	// SourcePath is the blob's path as given on the command line.
	SourcePath string `cbor:"source_path,omitempty"`

	// SourceDigest is the BLAKE3 digest of the whole blob.
	SourceDigest binhash.Digest `cbor:"source_digest"`

	// Algorithm and Encoding are the transforms the payload was
	// imported with. Export uses them when no flag or profile says
	// otherwise.
	Algorithm cipher.Algorithm   `cbor:"algorithm"`
	Encoding  textcodec.Encoding `cbor:"encoding"`

	ImportedAt time.Time `cbor:"imported_at"`
}

// NewSaved captures split for persistence.
func NewSaved(split *envelope.Split) *Saved {
	return &Saved{
		Version:            savedVersion,
		Header:             split.Header,
		ExtractedText:      split.ExtractedText,
		Footer:             split.Footer,
		LengthPrefixOffset: split.LengthPrefixOffset,
		PayloadStart:       split.PayloadStart,
		PayloadEnd:         split.PayloadEnd,
	}
}

// Split rebuilds the envelope split.
func (s *Saved) Split() *envelope.Split {
	return &envelope.Split{
		Header:             s.Header,
		ExtractedText:      s.ExtractedText,
		Footer:             s.Footer,
		LengthPrefixOffset: s.LengthPrefixOffset,
		PayloadStart:       s.PayloadStart,
		PayloadEnd:         s.PayloadEnd,
	}
}

// validate checks that the stored offsets agree with each other and
// with the stored bytes, so a hand-edited or truncated file cannot
// produce a corrupt export.
func (s *Saved) validate() error {
	if s.Version != savedVersion {
		return fmt.Errorf("session schema version %d, want %d", s.Version, savedVersion)
	}
	if s.LengthPrefixOffset != len(s.Header) {
		return fmt.Errorf("length prefix offset %d does not match %d header bytes",
			s.LengthPrefixOffset, len(s.Header))
	}
	if s.PayloadEnd-s.PayloadStart != len(s.ExtractedText) {
		return fmt.Errorf("payload span [%d, %d) does not match %d payload bytes",
			s.PayloadStart, s.PayloadEnd, len(s.ExtractedText))
	}
	tagIndex := len(s.Header) - 1 - envelope.RecordIDSize
	if tagIndex < 0 || s.Header[tagIndex] != envelope.StringRecordTag {
		return fmt.Errorf("header does not end with a string record tag and id")
	}
	return nil
}

// Store persists one Saved session at a fixed path, so an import in one
// invocation can be exported by the next.
//
// File layout: the 4-byte magic "SVPS", one compression tag byte, the
// uncompressed body length as a varint, then the body. The body is the
// deterministic CBOR encoding of [Saved].
type Store struct {
	path        string
	compression string
}

// NewStore returns a store for the session file at path. Compression
// is chosen automatically.
func NewStore(path string) *Store {
	return &Store{path: path, compression: "auto"}
}

// Path returns the session file path.
func (s *Store) Path() string {
	return s.path
}

// SetCompression selects "auto", "none", "lz4", or "zstd".
func (s *Store) SetCompression(name string) error {
	if name != "auto" {
		if _, err := ParseCompressionTag(name); err != nil {
			return err
		}
	}
	s.compression = name
	return nil
}

// Save atomically replaces the session file with saved. Parent
// directories are created as needed. The file is readable only by its
// owner: header and footer bytes come from the user's save data.
func (s *Store) Save(saved *Saved) error {
	body, err := codec.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if uint64(len(body)) > math.MaxUint32 {
		return fmt.Errorf("session body of %d bytes is too large", len(body))
	}

	var compressed []byte
	var tag CompressionTag
	if s.compression == "auto" {
		compressed, tag, err = compressAuto(body)
	} else {
		tag, _ = ParseCompressionTag(s.compression)
		compressed, err = compress(body, tag)
		if errors.Is(err, errIncompressible) {
			compressed, tag, err = body, CompressionNone, nil
		}
	}
	if err != nil {
		return fmt.Errorf("compressing session: %w", err)
	}

	data := make([]byte, 0, len(fileMagic)+1+varint.MaxLen+len(compressed))
	data = append(data, fileMagic[:]...)
	data = append(data, byte(tag))
	data = varint.Append(data, uint32(len(body)))
	data = append(data, compressed...)

	return writeFileAtomic(s.path, data)
}

// Load reads the session file. A missing file fails with
// fault.NoEnvelopeLoaded.
func (s *Store) Load() (*Saved, error) {
	body, err := s.body()
	if err != nil {
		return nil, err
	}

	var saved Saved
	if err := codec.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", s.path, err)
	}
	if err := saved.validate(); err != nil {
		return nil, fmt.Errorf("session %s is corrupt: %w", s.path, err)
	}
	return &saved, nil
}

// Body returns the decompressed CBOR body of the session file, for
// diagnostic display.
func (s *Store) Body() ([]byte, error) {
	return s.body()
}

// Clear removes the session file. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) body() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fault.Newf(fault.NoEnvelopeLoaded,
			"no saved session at %s (run import first)", s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	if len(data) < len(fileMagic)+2 || !bytes.Equal(data[:len(fileMagic)], fileMagic[:]) {
		return nil, fmt.Errorf("%s is not a savepatch session file", s.path)
	}
	tag := CompressionTag(data[len(fileMagic)])
	size, bodyStart, err := varint.Decode(data, len(fileMagic)+1)
	if err != nil {
		return nil, fmt.Errorf("session %s: body length: %w", s.path, err)
	}

	if uint64(size) > maxBodySize {
		return nil, fmt.Errorf("session %s: body length %d exceeds the %d byte limit", s.path, size, uint64(maxBodySize))
	}

	body, err := decompress(data[bodyStart:], tag, int(size))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.path, err)
	}
	return body, nil
}

// writeFileAtomic writes data to a temporary file beside path and
// renames it into place, so readers never see a partial session.
func writeFileAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	tmpFile, err := os.CreateTemp(directory, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp session file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming session file to %s: %w", path, err)
	}

	success = true
	return nil
}
