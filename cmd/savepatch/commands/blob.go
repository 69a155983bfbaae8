// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/savepatch/cmd/savepatch/cli"
	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/envelope"
	"github.com/bureau-foundation/savepatch/lib/jsonedit"
	"github.com/bureau-foundation/savepatch/lib/pipeline"
)

// locateFile reads a blob and locates its string record.
func locateFile(path string, stdin io.Reader) ([]byte, *envelope.Split, error) {
	raw, err := readInput(path, stdin)
	if err != nil {
		return nil, nil, err
	}
	split, err := envelope.Locate(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("locating string record in %s: %w", path, err)
	}
	return raw, split, nil
}

// --- extract ---

type extractParams struct {
	Out     string `json:"out" flag:"out,o"     desc:"write the payload to this file instead of stdout"`
	Verbose bool   `json:"-"   flag:"verbose,v" desc:"log at debug level"`
}

func extractCommand() *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Print the raw payload of a save file without decrypting",
		Usage:   "savepatch extract <blob> [flags]",
		Description: `Print the payload of the string record exactly as stored, before any
decoding or decryption. Useful for handing the cipher text to another
tool, or to "savepatch decrypt" while experimenting with settings.`,
		Examples: []cli.Example{
			{
				Description: "Try settings on a payload without touching the session",
				Command:     "savepatch extract slot1.dat | savepatch decrypt -e base64url --key-file game.key",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("extract", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			return cli.Categorize(runExtract(&params, args, os.Stdin, os.Stdout))
		},
	}
}

func runExtract(params *extractParams, args []string, stdin io.Reader, stdout io.Writer) error {
	path, err := singleArg(args, "blob", false)
	if err != nil {
		return err
	}
	_, split, err := locateFile(path, stdin)
	if err != nil {
		return err
	}
	return writeTextOutput(params.Out, split.ExtractedText, stdout)
}

// --- inspect ---

type inspectParams struct {
	cli.JSONOutput
	Verbose bool `json:"-" flag:"verbose,v" desc:"log at debug level"`
}

// inspectReport is the --json form of inspect.
type inspectReport struct {
	Path   string `json:"path"`
	BLAKE3 string `json:"blake3"`
	envelope.Diagnostics
	Preview string `json:"preview"`
}

// previewLength is how many payload characters inspect shows.
const previewLength = 48

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show the record geometry and digest of a save file",
		Usage:   "savepatch inspect <blob> [flags]",
		Description: `Locate the string record and report where it sits in the file: total
size, header size, the varint length prefix, the payload span, and the
footer size, plus the BLAKE3 digest of the whole file and the start of
the payload. No key is needed.`,
		Examples: []cli.Example{
			{
				Description: "Inspect a save",
				Command:     "savepatch inspect slot1.dat",
			},
			{
				Description: "Compare payload offsets across saves",
				Command:     "savepatch inspect --json slot1.dat | jq .payload_start",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			return cli.Categorize(runInspect(&params, args, os.Stdin, os.Stdout))
		},
	}
}

func runInspect(params *inspectParams, args []string, stdin io.Reader, stdout io.Writer) error {
	path, err := singleArg(args, "blob", false)
	if err != nil {
		return err
	}
	raw, split, err := locateFile(path, stdin)
	if err != nil {
		return err
	}

	digest := binhash.Sum(raw)
	report := inspectReport{
		Path:        path,
		BLAKE3:      digest.String(),
		Diagnostics: split.Diagnostics(),
		Preview:     preview(split.ExtractedText),
	}
	if done, err := params.EmitJSON(stdout, report); done {
		return err
	}

	s := newStyles(stdout, colorEnabled(stdout))
	rows := append(diagnosticRows(report.Diagnostics),
		row{"BLAKE3", report.BLAKE3},
		row{"Preview", report.Preview},
	)
	_, err = fmt.Fprint(stdout, s.block(path, rows))
	return err
}

// preview returns the first previewLength characters of text, marking
// truncation with "...".
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLength]) + "..."
}

// --- verify ---

type verifyParams struct {
	cipherParams
	cli.JSONOutput
	EnvelopeOnly bool   `json:"envelope_only" flag:"envelope-only" desc:"check only the envelope round trip (no key needed)"`
	BLAKE3       string `json:"blake3"        flag:"blake3"        desc:"also check the file against this BLAKE3 digest (64 hex digits)"`
}

// verifyCheck is one verification step.
type verifyCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// verifyReport is the --json form of verify.
type verifyReport struct {
	Path   string        `json:"path"`
	OK     bool          `json:"ok"`
	Checks []verifyCheck `json:"checks"`
}

func (r *verifyReport) add(name string, ok bool, detail string) {
	r.Checks = append(r.Checks, verifyCheck{Name: name, OK: ok, Detail: detail})
	r.OK = r.OK && ok
}

func verifyCommand() *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check that a save file survives an import/export round trip",
		Usage:   "savepatch verify <blob> [flags]",
		Description: `Run the checks an unchanged import/export cycle depends on:

  envelope    patching the located payload back reproduces the file
  decrypt     the payload decrypts with the selected settings
  json        the plain text parses as JSON
  reencrypt   encrypting the plain text reproduces the payload

With --blake3, a "digest" check first compares the file with a known
digest, such as one printed by "savepatch inspect" on a backup.
With --envelope-only, only the first check runs and no key is needed.
Exits 1 if any check fails.`,
		Examples: []cli.Example{
			{
				Description: "Confirm settings before editing a save",
				Command:     "savepatch verify slot1.dat --profile game",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			return cli.Categorize(runVerify(&params, args, os.Stdin, os.Stdout, os.Stderr, logger))
		},
	}
}

func runVerify(params *verifyParams, args []string, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) error {
	path, err := singleArg(args, "blob", false)
	if err != nil {
		return err
	}
	if path == "-" && params.usesStdin() {
		return cli.Validation("stdin cannot supply both the key and the blob")
	}

	var expected *binhash.Digest
	if params.BLAKE3 != "" {
		digest, err := binhash.ParseDigest(params.BLAKE3)
		if err != nil {
			return cli.Validation("--blake3: %w", err)
		}
		expected = &digest
	}

	var pipelineConfig pipeline.Config
	if !params.EnvelopeOnly {
		cfg, err := params.loadConfig()
		if err != nil {
			return err
		}
		pipelineConfig, err = params.resolve(cfg, nil, stderr, logger)
		if err != nil {
			return err
		}
	}

	raw, split, err := locateFile(path, stdin)
	if err != nil {
		return err
	}

	report := verifyReport{Path: path, OK: true}
	if expected != nil {
		if actual := binhash.Sum(raw); actual == *expected {
			report.add("digest", true, "")
		} else {
			report.add("digest", false, "file is "+actual.Short()+", want "+expected.Short())
		}
	}
	checkRoundTrip(&report, raw, split, pipelineConfig, params.EnvelopeOnly)

	if done, err := params.EmitJSON(stdout, report); done {
		if err != nil {
			return err
		}
	} else {
		s := newStyles(stdout, colorEnabled(stdout))
		rows := make([]row, 0, len(report.Checks))
		for _, check := range report.Checks {
			value := s.status(check.OK)
			if check.Detail != "" {
				value += "  " + check.Detail
			}
			rows = append(rows, row{check.Name, value})
		}
		fmt.Fprint(stdout, s.block(path, rows))
	}

	if !report.OK {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

// checkRoundTrip appends the verification checks to report. Checks
// after the first failure in the cipher chain are skipped.
func checkRoundTrip(report *verifyReport, raw []byte, split *envelope.Split, config pipeline.Config, envelopeOnly bool) {
	patched, err := envelope.Patch(split, split.ExtractedText)
	switch {
	case err != nil:
		report.add("envelope", false, err.Error())
	case !bytes.Equal(patched, raw):
		report.add("envelope", false, "patched bytes differ from the file")
	default:
		report.add("envelope", true, "")
	}
	if envelopeOnly {
		return
	}

	plain, err := pipeline.DecryptText(split.ExtractedText, config)
	if err != nil {
		report.add("decrypt", false, err.Error())
		return
	}
	report.add("decrypt", true, fmt.Sprintf("%s, %s", config.Algorithm, config.Encoding))

	if jsonedit.Valid(plain) {
		report.add("json", true, "")
	} else {
		report.add("json", false, "plain text is not JSON; export will refuse it")
	}

	encrypted, err := pipeline.EncryptText(plain, config)
	switch {
	case err != nil:
		report.add("reencrypt", false, err.Error())
	case encrypted != split.ExtractedText:
		report.add("reencrypt", false, "encrypting the plain text gives a different payload")
	default:
		report.add("reencrypt", true, "")
	}
}
