// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/savepatch/cmd/savepatch/cli"
	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/codec"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
)

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Summary: "Inspect or clear the saved import session",
		Description: `Manage the session file written by "savepatch import" and read by
"savepatch export". The file holds the bytes around the payload of the
last imported save, compressed CBOR, readable only by its owner.

Its location is session_path in the config file.`,
		Subcommands: []*cli.Command{
			sessionShowCommand(),
			sessionClearCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "See which save export will patch",
				Command:     "savepatch session show",
			},
			{
				Description: "Forget the imported save",
				Command:     "savepatch session clear",
			},
		},
	}
}

// Source status values reported by session show.
const (
	sourceUnchanged = "unchanged"
	sourceChanged   = "changed"
	sourceMissing   = "missing"
)

// sessionReport is the --json form of session show.
type sessionReport struct {
	Path         string               `json:"path"`
	SourcePath   string               `json:"source_path,omitempty"`
	SourceDigest string               `json:"source_digest"`
	SourceStatus string               `json:"source_status,omitempty"`
	Algorithm    cipher.Algorithm     `json:"algorithm"`
	Encoding     textcodec.Encoding   `json:"encoding"`
	ImportedAt   time.Time            `json:"imported_at"`
	Diagnostics  envelope.Diagnostics `json:"diagnostics"`
}

// --- session show ---

type sessionShowParams struct {
	commonParams
	cli.JSONOutput
	CBOR bool `json:"cbor" flag:"cbor" desc:"print the stored CBOR body in diagnostic notation"`
}

func sessionShowCommand() *cli.Command {
	var params sessionShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Describe the saved session",
		Usage:   "savepatch session show [flags]",
		Description: `Print where the imported save came from, the settings it was imported
with, and the record geometry export will reuse. Reports whether the
source file has changed on disk since the import.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("show takes no positional arguments, got %q", args[0])
			}
			return cli.Categorize(runSessionShow(&params, os.Stdout))
		},
	}
}

func runSessionShow(params *sessionShowParams, stdout io.Writer) error {
	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	if params.CBOR {
		body, err := store.Body()
		if err != nil {
			return err
		}
		notation, err := codec.Diagnose(body)
		if err != nil {
			return fmt.Errorf("diagnose session body: %w", err)
		}
		_, err = fmt.Fprintln(stdout, notation)
		return err
	}

	saved, err := store.Load()
	if err != nil {
		return err
	}

	report := sessionReport{
		Path:         store.Path(),
		SourcePath:   saved.SourcePath,
		SourceDigest: saved.SourceDigest.String(),
		SourceStatus: sourceStatus(saved.SourcePath, saved.SourceDigest),
		Algorithm:    saved.Algorithm,
		Encoding:     saved.Encoding,
		ImportedAt:   saved.ImportedAt,
		Diagnostics:  saved.Split().Diagnostics(),
	}
	if done, err := params.EmitJSON(stdout, report); done {
		return err
	}

	s := newStyles(stdout, colorEnabled(stdout))
	source := report.SourcePath
	if source == "" {
		source = "(stdin)"
	} else if report.SourceStatus != "" {
		source += " (" + report.SourceStatus + ")"
	}
	fmt.Fprint(stdout, s.block("Session "+report.Path, []row{
		{"Source", source},
		{"BLAKE3", report.SourceDigest},
		{"Imported", report.ImportedAt.Local().Format(time.DateTime)},
		{"Algorithm", report.Algorithm.String()},
		{"Encoding", report.Encoding.String()},
	}))
	_, err = fmt.Fprint(stdout, s.block("Record", diagnosticRows(report.Diagnostics)))
	return err
}

// sourceStatus compares the source file on disk with the digest taken
// at import. Returns "" when there is no source path or the file cannot
// be read for another reason.
func sourceStatus(path string, imported binhash.Digest) string {
	if path == "" {
		return ""
	}
	current, err := binhash.HashFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return sourceMissing
	case err != nil:
		return ""
	case current == imported:
		return sourceUnchanged
	default:
		return sourceChanged
	}
}

// --- session clear ---

type sessionClearParams struct {
	commonParams
}

func sessionClearCommand() *cli.Command {
	var params sessionClearParams

	return &cli.Command{
		Name:    "clear",
		Summary: "Delete the saved session",
		Usage:   "savepatch session clear [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("clear", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("clear takes no positional arguments, got %q", args[0])
			}
			return cli.Categorize(runSessionClear(&params, logger))
		},
	}
}

func runSessionClear(params *sessionClearParams, logger *slog.Logger) error {
	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	logger.Info("session cleared", "path", store.Path())
	return nil
}
