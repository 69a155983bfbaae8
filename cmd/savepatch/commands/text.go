// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/savepatch/cmd/savepatch/cli"
	"github.com/bureau-foundation/savepatch/lib/jsonedit"
	"github.com/bureau-foundation/savepatch/lib/pipeline"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
)

// --- encrypt ---

type encryptParams struct {
	cipherParams
	Out string `json:"out" flag:"out,o" desc:"write the cipher text to this file instead of stdout"`
}

func encryptCommand() *cli.Command {
	var params encryptParams

	return &cli.Command{
		Name:    "encrypt",
		Summary: "Encrypt plain text with the selected cipher and encoding",
		Usage:   "savepatch encrypt [file] [flags]",
		Description: `Encrypt text read from the named file, or from stdin if no file is
given (or file is "-"). One trailing line break is dropped from the
input. The cipher text is printed to stdout.

The algorithm, encoding, and key come from flags, then from the config
profile. With aes-ecb-pkcs7 the key's UTF-8 bytes are the AES key
as-is, so it must be 16, 24, or 32 bytes long. A key of any other
length fails with "invalid key"; it is never padded, truncated, or
hashed to fit.`,
		Examples: []cli.Example{
			{
				Description: "Encrypt a JSON document with a key file",
				Command:     "savepatch encrypt save.json -a aes-ecb-pkcs7 -e base64 --key-file game.key",
			},
			{
				Description: "Hex-encode text without encryption",
				Command:     "echo hello | savepatch encrypt -a none -e hex",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("encrypt", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			return cli.Categorize(runEncrypt(&params, args, os.Stdin, os.Stdout, os.Stderr, logger))
		},
	}
}

func runEncrypt(params *encryptParams, args []string, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) error {
	path, err := singleArg(args, "file", true)
	if err != nil {
		return err
	}
	if (path == "" || path == "-") && params.usesStdin() {
		return cli.Validation("stdin cannot supply both the key and the input")
	}

	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	pipelineConfig, err := params.resolve(cfg, nil, stderr, logger)
	if err != nil {
		return err
	}

	plain, err := readText(path, stdin)
	if err != nil {
		return err
	}
	encrypted, err := pipeline.EncryptText(plain, pipelineConfig)
	if err != nil {
		return err
	}

	logger.Debug("encrypted", "input_bytes", len(plain), "output_bytes", len(encrypted))
	return writeTextOutput(params.Out, encrypted, stdout)
}

// --- decrypt ---

type decryptParams struct {
	cipherParams
	Pretty bool   `json:"pretty" flag:"pretty" desc:"pretty-print the result when it is JSON"`
	Out    string `json:"out"    flag:"out,o"  desc:"write the plain text to this file instead of stdout"`
}

func decryptCommand() *cli.Command {
	var params decryptParams

	return &cli.Command{
		Name:    "decrypt",
		Summary: "Decrypt cipher text with the selected cipher and encoding",
		Usage:   "savepatch decrypt [file] [flags]",
		Description: `Decrypt text read from the named file, or from stdin if no file is
given (or file is "-"). Surrounding whitespace is ignored for the
base64, base64url, and hex encodings.

A wrong key almost always fails with "decryption failed"; it never
produces silent garbage that is not valid UTF-8. AES keys must be
16, 24, or 32 bytes, the same as for encrypt.`,
		Examples: []cli.Example{
			{
				Description: "Decrypt and pretty-print a copied payload",
				Command:     "pbpaste | savepatch decrypt --pretty --key-file game.key",
			},
			{
				Description: "Decode a hex payload",
				Command:     "echo 68656c6c6f | savepatch decrypt -a none -e hex",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decrypt", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			return cli.Categorize(runDecrypt(&params, args, os.Stdin, os.Stdout, os.Stderr, logger))
		},
	}
}

func runDecrypt(params *decryptParams, args []string, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) error {
	path, err := singleArg(args, "file", true)
	if err != nil {
		return err
	}
	if (path == "" || path == "-") && params.usesStdin() {
		return cli.Validation("stdin cannot supply both the key and the input")
	}

	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	pipelineConfig, err := params.resolve(cfg, nil, stderr, logger)
	if err != nil {
		return err
	}

	text, err := readText(path, stdin)
	if err != nil {
		return err
	}
	if pipelineConfig.Encoding != textcodec.UTF8 {
		text = strings.TrimSpace(text)
	}

	plain, err := pipeline.DecryptText(text, pipelineConfig)
	if err != nil {
		return err
	}

	if params.Pretty {
		if pretty, err := jsonedit.Pretty(plain); err == nil {
			plain = pretty
			if params.Out == "" && colorEnabled(stdout) {
				plain = jsonedit.Highlight(plain)
			}
		} else {
			logger.Debug("plain text is not JSON, printing as-is", "error", err)
		}
	}
	return writeTextOutput(params.Out, plain, stdout)
}

// --- pretty ---

type prettyParams struct {
	Compact bool   `json:"compact" flag:"compact" desc:"compact instead of indent"`
	Out     string `json:"out"     flag:"out,o"   desc:"write the result to this file instead of stdout"`
	Verbose bool   `json:"-"       flag:"verbose,v" desc:"log at debug level"`
}

func prettyCommand() *cli.Command {
	var params prettyParams

	return &cli.Command{
		Name:    "pretty",
		Summary: "Pretty-print or compact JSON",
		Usage:   "savepatch pretty [file] [flags]",
		Description: `Reformat JSON read from the named file, or from stdin. Comments and
trailing commas are accepted on input and removed on output.

Pretty output uses two-space indentation and is syntax-highlighted on
a terminal. --compact produces the single-line form export encrypts.`,
		Examples: []cli.Example{
			{
				Description: "Check an edited save for syntax errors",
				Command:     "savepatch pretty slot1.json > /dev/null",
			},
			{
				Description: "Compact a document",
				Command:     "savepatch pretty --compact slot1.json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("pretty", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			return cli.Categorize(runPretty(&params, args, os.Stdin, os.Stdout))
		},
	}
}

func runPretty(params *prettyParams, args []string, stdin io.Reader, stdout io.Writer) error {
	path, err := singleArg(args, "file", true)
	if err != nil {
		return err
	}
	text, err := readText(path, stdin)
	if err != nil {
		return err
	}

	var formatted string
	if params.Compact {
		formatted, err = jsonedit.Compact(text)
	} else {
		formatted, err = jsonedit.Pretty(text)
	}
	if err != nil {
		return err
	}

	if !params.Compact && params.Out == "" && colorEnabled(stdout) {
		formatted = jsonedit.Highlight(formatted)
	}
	return writeTextOutput(params.Out, formatted, stdout)
}
