// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for savepatch.
//
// Configuration comes from a single file named by either the
// SAVEPATCH_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. With neither set, the built-in [Default] applies.
//
// The file holds named cipher profiles so a game's algorithm, encoding,
// and key file are typed once:
//
//	default_profile: game
//	session_path: ${HOME}/.cache/savepatch/session
//	profiles:
//	  game:
//	    algorithm: aes-ecb-pkcs7
//	    encoding: base64
//	    key_file: ${HOME}/.config/savepatch/game.key
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. Environment
// variables never override config values.
package config
