// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the savepatch CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in
// cmd/savepatch/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, logger setup, and
// structured help output with examples.
//
// Flags are usually declared as tagged struct fields and bound with
// [FlagsFromParams]; [JSONOutput] is embedded by commands that support
// --json.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Errors returned by commands are categorized with [ToolError]
// (validation, not_found, internal). [Categorize] derives the category
// from a core fault kind, and [ExitCodeFor] turns it into the process
// exit code. [ExitError] carries a handled non-zero exit that needs no
// extra message.
package cli
