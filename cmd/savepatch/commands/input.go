// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/savepatch/cmd/savepatch/cli"
)

// readInput reads path, or stdin when path is "" or "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, cli.Internal("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cli.NotFound("%s does not exist", path)
	}
	if err != nil {
		return nil, cli.Internal("read %s: %w", path, err)
	}
	return data, nil
}

// readText reads a text argument and drops one trailing line break, so
// "echo ... |" and editor-saved files behave like the typed text.
func readText(path string, stdin io.Reader) (string, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return "", err
	}
	return dropTrailingNewline(string(data)), nil
}

func dropTrailingNewline(text string) string {
	if n := len(text); n > 0 && text[n-1] == '\n' {
		text = text[:n-1]
		if n := len(text); n > 0 && text[n-1] == '\r' {
			text = text[:n-1]
		}
	}
	return text
}

// singleArg returns the only positional argument, or "" when there is
// none and optional is true.
func singleArg(args []string, name string, optional bool) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case len(args) == 0 && optional:
		return "", nil
	case len(args) == 0:
		return "", cli.Validation("missing %s argument", name)
	default:
		return "", cli.Validation("expected one %s argument, got %d", name, len(args))
	}
}

// writeTextOutput writes text to path, or to stdout followed by a line
// break when path is empty.
func writeTextOutput(path, text string, stdout io.Writer) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return cli.Internal("write %s: %w", path, err)
	}
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// colorEnabled reports whether styled output should be written to w.
// NO_COLOR disables it regardless of the terminal.
func colorEnabled(w io.Writer) bool {
	return os.Getenv("NO_COLOR") == "" && isTerminal(w)
}
