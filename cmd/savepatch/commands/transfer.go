// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/savepatch/cmd/savepatch/cli"
	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/config"
	"github.com/bureau-foundation/savepatch/lib/jsonedit"
	"github.com/bureau-foundation/savepatch/lib/session"
)

// openStore returns the session store configured by cfg.
func openStore(cfg *config.Config) (*session.Store, error) {
	store := session.NewStore(cfg.SessionPath)
	if err := store.SetCompression(cfg.SessionCompression); err != nil {
		return nil, cli.Validation("session_compression: %w", err)
	}
	return store, nil
}

// --- import ---

type importParams struct {
	cipherParams
	Out       string `json:"out"        flag:"out,o"      desc:"write the decrypted JSON to this file instead of stdout"`
	NoSession bool   `json:"no_session" flag:"no-session" desc:"do not save the located envelope for a later export"`
	Quiet     bool   `json:"quiet"      flag:"quiet,q"    desc:"do not print diagnostics to stderr"`
}

func importCommand() *cli.Command {
	var params importParams

	return &cli.Command{
		Name:    "import",
		Summary: "Locate and decrypt the JSON payload of a save file",
		Usage:   "savepatch import <blob> [flags]",
		Description: `Find the string record (tag 0x06, 4-byte id, varint length, UTF-8
payload) in a binary save file, decrypt its payload, and print it as
pretty JSON. Payloads that are not JSON are printed as-is.

Record geometry and the file's BLAKE3 digest are printed to stderr.

The located envelope (the bytes before and after the payload) is saved
to the session file so that "savepatch export" can write an edited
payload back. The envelope is saved even when decryption fails, so a
retry only needs the right key.`,
		Examples: []cli.Example{
			{
				Description: "Decrypt a save into an editable file",
				Command:     "savepatch import slot1.dat --key-file game.key -o slot1.json",
			},
			{
				Description: "Read a save that stores hex text without encryption",
				Command:     "savepatch import slot1.dat -a none -e hex",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("import", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			return cli.Categorize(runImport(&params, args, os.Stdin, os.Stdout, os.Stderr, logger))
		},
	}
}

func runImport(params *importParams, args []string, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) error {
	blobPath, err := singleArg(args, "blob", false)
	if err != nil {
		return err
	}
	if blobPath == "-" && params.usesStdin() {
		return cli.Validation("stdin cannot supply both the key and the blob")
	}

	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	pipelineConfig, err := params.resolve(cfg, nil, stderr, logger)
	if err != nil {
		return err
	}

	raw, err := readInput(blobPath, stdin)
	if err != nil {
		return err
	}
	logger = logger.With("blob", blobPath, "size", len(raw))

	current := session.New()
	result, importErr := current.Import(raw, pipelineConfig)
	if result == nil {
		return fmt.Errorf("locating string record in %s: %w", blobPath, importErr)
	}

	if !params.NoSession {
		saved := session.NewSaved(current.Split())
		saved.SourcePath = sourcePath(blobPath)
		saved.SourceDigest = result.SourceDigest
		saved.Algorithm = pipelineConfig.Algorithm
		saved.Encoding = pipelineConfig.Encoding
		saved.ImportedAt = time.Now().UTC()

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		if err := store.Save(saved); err != nil {
			return err
		}
		logger.Debug("session saved", "path", store.Path())
	}

	if !params.Quiet {
		fmt.Fprint(stderr, renderDiagnostics(newStyles(stderr, colorEnabled(stderr)),
			"Located string record", result.Diagnostics, &result.SourceDigest))
	}

	if importErr != nil {
		if !params.NoSession {
			logger.Info("envelope saved despite the decrypt failure; fix the key or encoding and import again")
		}
		return importErr
	}

	text := result.Plaintext
	if pretty, err := jsonedit.Pretty(text); err == nil {
		text = pretty
		if params.Out == "" && colorEnabled(stdout) {
			text = jsonedit.Highlight(text)
		}
	} else {
		logger.Warn("decrypted payload is not JSON, printing as-is", "error", err)
	}
	return writeTextOutput(params.Out, text, stdout)
}

// sourcePath returns the absolute form of a blob path for the session
// record, or "" for stdin.
func sourcePath(path string) string {
	if path == "-" {
		return ""
	}
	if absolute, err := filepath.Abs(path); err == nil {
		return absolute
	}
	return path
}

// --- export ---

type exportParams struct {
	cipherParams
	Out string `json:"out" flag:"out,o" desc:"output file (default: export_filename from config)"`
}

func exportCommand() *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Encrypt edited JSON and patch it into the imported save",
		Usage:   "savepatch export <edited.json> [flags]",
		Description: `Compact the edited JSON, encrypt it, and write a new save file made of
the imported envelope with the new payload and a rewritten length
prefix. Everything outside the payload is preserved byte for byte.

The algorithm and encoding default to the ones used at import. An
explicit --profile replaces them, and --algorithm and --encoding
override both. The input may contain comments and
trailing commas. Requires a prior "savepatch import".`,
		Examples: []cli.Example{
			{
				Description: "Write the edited save next to the original",
				Command:     "savepatch export slot1.json --key-file game.key -o slot1.patched.dat",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			return cli.Categorize(runExport(&params, args, os.Stdin, os.Stdout, os.Stderr, logger))
		},
	}
}

func runExport(params *exportParams, args []string, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) error {
	editedPath, err := singleArg(args, "edited JSON", false)
	if err != nil {
		return err
	}
	if editedPath == "-" && params.usesStdin() {
		return cli.Validation("stdin cannot supply both the key and the edited JSON")
	}

	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	saved, err := store.Load()
	if err != nil {
		return err
	}
	logger = logger.With("session", store.Path())

	if saved.SourcePath != "" {
		if digest, err := binhash.HashFile(saved.SourcePath); err == nil && digest != saved.SourceDigest {
			logger.Warn("source blob changed since import; exporting the imported envelope",
				"source", saved.SourcePath,
				"imported", saved.SourceDigest.Short(),
				"current", digest.Short(),
			)
		}
	}

	defaults := &cipherDefaults{Algorithm: saved.Algorithm, Encoding: saved.Encoding}
	pipelineConfig, err := params.resolve(cfg, defaults, stderr, logger)
	if err != nil {
		return err
	}

	edited, err := readText(editedPath, stdin)
	if err != nil {
		return err
	}

	exported, err := session.Restore(saved.Split()).Export(edited, pipelineConfig)
	if err != nil {
		return err
	}

	outPath := params.Out
	if outPath == "" {
		outPath = cfg.ExportFilename
	}
	if err := os.WriteFile(outPath, exported, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	digest := binhash.Sum(exported)
	logger.Debug("exported", "path", outPath, "size", len(exported), "blake3", digest.Short())
	fmt.Fprintf(stdout, "%s: %s (was %s), blake3 %s\n", outPath,
		formatBytes(len(exported)), formatBytes(len(saved.Header)+len(saved.ExtractedText)+len(saved.Footer)),
		digest.Short())
	return nil
}
