// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package varint implements the 7-bit variable-length unsigned integer
// used as the byte-length prefix of serialized strings: little-endian
// base-128 groups, high bit set on every byte except the last.
//
//	0      -> 00
//	127    -> 7f
//	128    -> 80 01
//	300    -> ac 02
//	2^32-1 -> ff ff ff ff 0f
//
// [Encode] always produces the minimal form, so re-encoding an unchanged
// length reproduces the original bytes. [Decode] accepts any encoding
// that terminates within [MaxLen] bytes and fits in 32 bits.
package varint

import (
	"math"

	"github.com/bureau-foundation/savepatch/lib/fault"
)

// MaxLen is the longest valid encoding of a 32-bit value.
const MaxLen = 5

// Decode reads a varint from buffer starting at offset. It returns the
// value and the offset of the first byte after it.
//
// A prefix that runs past the end of buffer, does not terminate within
// MaxLen bytes, or encodes a value above 2^32-1 fails with
// fault.MalformedVarInt.
func Decode(buffer []byte, offset int) (uint32, int, error) {
	if offset < 0 || offset >= len(buffer) {
		return 0, offset, fault.Newf(fault.MalformedVarInt,
			"varint offset %d outside %d-byte buffer", offset, len(buffer))
	}

	var value uint64
	for index := range MaxLen {
		position := offset + index
		if position >= len(buffer) {
			return 0, offset, fault.Newf(fault.MalformedVarInt,
				"varint at offset %d truncated after %d bytes", offset, index)
		}

		current := buffer[position]
		value |= uint64(current&0x7f) << (7 * index)
		if current&0x80 != 0 {
			continue
		}

		if value > math.MaxUint32 {
			return 0, offset, fault.Newf(fault.MalformedVarInt,
				"varint at offset %d overflows 32 bits", offset)
		}
		return uint32(value), position + 1, nil
	}

	return 0, offset, fault.Newf(fault.MalformedVarInt,
		"varint at offset %d exceeds %d bytes", offset, MaxLen)
}

// Encode returns the minimal encoding of value.
func Encode(value uint32) []byte {
	return Append(make([]byte, 0, Size(value)), value)
}

// Append appends the minimal encoding of value to dst and returns the
// extended slice.
func Append(dst []byte, value uint32) []byte {
	for value >= 0x80 {
		dst = append(dst, byte(value&0x7f)|0x80)
		value >>= 7
	}
	return append(dst, byte(value))
}

// Size returns the number of bytes Encode(value) produces.
func Size(value uint32) int {
	size := 1
	for value >= 0x80 {
		value >>= 7
		size++
	}
	return size
}
