// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by Prompt when input is not a terminal.
var ErrNotTerminal = errors.New("secret: input is not a terminal")

// Prompt writes label to output and reads a line from input with echo
// disabled. input must be a terminal; scripts should use a key file
// instead.
func Prompt(input *os.File, output io.Writer, label string) (*Buffer, error) {
	fileDescriptor := int(input.Fd())
	if !term.IsTerminal(fileDescriptor) {
		return nil, ErrNotTerminal
	}

	fmt.Fprint(output, label)
	data, err := term.ReadPassword(fileDescriptor)
	fmt.Fprintln(output)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	if len(data) == 0 {
		return nil, errors.New("no key entered")
	}
	buffer, err := NewFromBytes(data)
	if err != nil {
		Zero(data)
		return nil, err
	}
	return buffer, nil
}
