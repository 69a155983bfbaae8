// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadFromPath reads a key from a file, or from stdin if path is "-".
// Trailing CR and LF bytes are stripped (files written by echo end with
// one); every other byte, including spaces, is part of the key. Returns
// an error if nothing remains.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return ReadLine(os.Stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return fromRaw(data, path)
}

// ReadLine reads the first line of reader as a key.
func ReadLine(reader io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading key from stdin: %w", err)
		}
		return nil, errors.New("stdin is empty")
	}
	// scanner.Bytes aliases the scanner's buffer, which fromRaw zeros.
	return fromRaw(scanner.Bytes(), "stdin")
}

func fromRaw(data []byte, source string) (*Buffer, error) {
	trimmed := data
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == '\n' || trimmed[len(trimmed)-1] == '\r') {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("key from %s is empty", source)
	}

	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
