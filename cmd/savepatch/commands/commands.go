// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete savepatch CLI command tree.
//
// Each command's Run wires the process streams into a run* function
// that takes explicit readers and writers, which is what the tests
// exercise. Core failures are passed through [cli.Categorize] so the
// exit code reflects their kind.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/savepatch/cmd/savepatch/cli"
	"github.com/bureau-foundation/savepatch/lib/version"
)

// Root builds and returns the complete savepatch CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "savepatch",
		Description: `savepatch: edit the JSON payload inside binary save files.

A save file carries its state as one length-prefixed string record,
usually AES-encrypted and base64-encoded. Import locates and decrypts
it; export encrypts an edited document and patches it back without
touching any other byte of the file.`,
		Subcommands: []*cli.Command{
			importCommand(),
			exportCommand(),
			extractCommand(),
			inspectCommand(),
			verifyCommand(),
			encryptCommand(),
			decryptCommand(),
			prettyCommand(),
			sessionCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Fprintf(os.Stdout, "savepatch %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Decrypt a save into an editable file",
				Command:     "savepatch import slot1.dat --key-file game.key -o slot1.json",
			},
			{
				Description: "Write the edited document back into the save",
				Command:     "savepatch export slot1.json --key-file game.key -o slot1.dat",
			},
			{
				Description: "Check a save without a key",
				Command:     "savepatch inspect slot1.dat",
			},
			{
				Description: "Use a config profile for a game's settings",
				Command:     "SAVEPATCH_CONFIG=~/.config/savepatch.yaml savepatch import slot1.dat --profile game",
			},
		},
	}
}
