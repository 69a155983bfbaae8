// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"math"
	"unicode/utf8"

	"github.com/bureau-foundation/savepatch/lib/fault"
	"github.com/bureau-foundation/savepatch/lib/varint"
)

const (
	// StringRecordTag marks the start of a serialized string record.
	StringRecordTag byte = 0x06

	// RecordIDSize is the width of the opaque record identifier between
	// the tag and the length prefix.
	RecordIDSize = 4
)

// Split is the result of locating the string record: where to cut, and
// what was found there. It carries everything [Patch] needs and nothing
// else. Header and Footer are private copies; a Split never aliases the
// buffer it was located in.
type Split struct {
	// Header is every byte before the length prefix, including the tag
	// and record id.
	Header []byte

	// ExtractedText is the payload decoded as UTF-8.
	ExtractedText string

	// Footer is every byte after the payload.
	Footer []byte

	// LengthPrefixOffset is where the varint length begins. Always equal
	// to len(Header).
	LengthPrefixOffset int

	// PayloadStart is the offset of the first payload byte.
	PayloadStart int

	// PayloadEnd is the offset one past the last payload byte. The footer
	// begins here.
	PayloadEnd int
}

// Diagnostics summarizes where a record sits inside its blob.
type Diagnostics struct {
	TotalSize          int `json:"total_size"`
	HeaderSize         int `json:"header_size"`
	LengthPrefixOffset int `json:"length_prefix_offset"`
	LengthPrefixSize   int `json:"length_prefix_size"`
	PayloadStart       int `json:"payload_start"`
	PayloadEnd         int `json:"payload_end"`
	PayloadSize        int `json:"payload_size"`
	FooterSize         int `json:"footer_size"`
}

// Locate scans buffer for the first structurally valid string record and
// cuts the buffer around it.
//
// Candidates whose length prefix is malformed, starts past the end of the
// buffer, or declares a payload that would run past the end are skipped
// and the scan continues at the next byte. If none qualifies, Locate
// fails with fault.RecordNotFound. If the accepted payload is not valid
// UTF-8, Locate fails with fault.InvalidUTF8.
func Locate(buffer []byte) (*Split, error) {
	for index := 0; index < len(buffer); index++ {
		if buffer[index] != StringRecordTag {
			continue
		}

		lengthOffset := index + 1 + RecordIDSize
		if lengthOffset >= len(buffer) {
			continue
		}

		length, payloadStart, err := varint.Decode(buffer, lengthOffset)
		if err != nil {
			continue
		}

		// Compare in uint64 so a length near 2^32 cannot wrap int on
		// 32-bit targets.
		if uint64(length) > uint64(len(buffer)-payloadStart) {
			continue
		}
		payloadEnd := payloadStart + int(length)

		payload := buffer[payloadStart:payloadEnd]
		if !utf8.Valid(payload) {
			return nil, fault.Newf(fault.InvalidUTF8,
				"string record at offset %d: payload bytes [%d, %d) are not valid UTF-8",
				index, payloadStart, payloadEnd)
		}

		return &Split{
			Header:             bytes.Clone(buffer[:lengthOffset]),
			ExtractedText:      string(payload),
			Footer:             bytes.Clone(buffer[payloadEnd:]),
			LengthPrefixOffset: lengthOffset,
			PayloadStart:       payloadStart,
			PayloadEnd:         payloadEnd,
		}, nil
	}

	return nil, fault.Newf(fault.RecordNotFound,
		"no string record (tag 0x%02x) with an in-bounds payload in %d bytes",
		StringRecordTag, len(buffer))
}

// Patch reassembles split's header and footer around newText with a
// freshly encoded length prefix. newText may be longer or shorter than
// the original payload. split is not modified.
func Patch(split *Split, newText string) ([]byte, error) {
	if !utf8.ValidString(newText) {
		return nil, fault.Newf(fault.InvalidUTF8, "replacement payload is not valid UTF-8")
	}
	if uint64(len(newText)) > math.MaxUint32 {
		return nil, fault.Newf(fault.MalformedVarInt,
			"replacement payload of %d bytes does not fit a 32-bit length prefix", len(newText))
	}

	length := uint32(len(newText))
	output := make([]byte, 0, len(split.Header)+varint.Size(length)+len(newText)+len(split.Footer))
	output = append(output, split.Header...)
	output = varint.Append(output, length)
	output = append(output, newText...)
	output = append(output, split.Footer...)
	return output, nil
}

// Reassemble rebuilds the buffer split was located in.
func (s *Split) Reassemble() []byte {
	// ExtractedText came from a validated in-bounds payload, so Patch
	// cannot fail here.
	output, err := Patch(s, s.ExtractedText)
	if err != nil {
		panic("envelope: reassembling a located split: " + err.Error())
	}
	return output
}

// Diagnostics reports the record geometry of split within its original
// buffer.
func (s *Split) Diagnostics() Diagnostics {
	return Diagnostics{
		TotalSize:          len(s.Header) + (s.PayloadEnd - s.LengthPrefixOffset) + len(s.Footer),
		HeaderSize:         len(s.Header),
		LengthPrefixOffset: s.LengthPrefixOffset,
		LengthPrefixSize:   s.PayloadStart - s.LengthPrefixOffset,
		PayloadStart:       s.PayloadStart,
		PayloadEnd:         s.PayloadEnd,
		PayloadSize:        s.PayloadEnd - s.PayloadStart,
		FooterSize:         len(s.Footer),
	}
}
