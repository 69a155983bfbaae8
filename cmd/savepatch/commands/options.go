// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/savepatch/cmd/savepatch/cli"
	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/config"
	"github.com/bureau-foundation/savepatch/lib/pipeline"
	"github.com/bureau-foundation/savepatch/lib/secret"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
)

// keyEnvironmentVariable supplies the cipher key when no flag does.
const keyEnvironmentVariable = "SAVEPATCH_KEY"

// keyPromptInput is the terminal the key prompt reads from.
var keyPromptInput = os.Stdin

// commonParams are accepted by every command that reads configuration.
type commonParams struct {
	ConfigPath string `json:"-" flag:"config"    desc:"config file (default: $SAVEPATCH_CONFIG, else built-in defaults)"`
	Verbose    bool   `json:"-" flag:"verbose,v" desc:"log at debug level"`
}

// loadConfig loads the file named by --config, or by SAVEPATCH_CONFIG
// when the flag is empty, and validates it.
func (p *commonParams) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if p.ConfigPath != "" {
		cfg, err = config.LoadFile(p.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid config: %w", err)
	}
	return cfg, nil
}

// cipherParams select the pipeline for commands that encrypt or
// decrypt. Empty fields fall back to a named profile, then to the
// session (export only), then to the default profile.
type cipherParams struct {
	commonParams
	Profile   string `json:"profile"   flag:"profile"      desc:"config profile supplying algorithm, encoding, and key file"`
	Algorithm string `json:"algorithm" flag:"algorithm,a"  desc:"cipher algorithm: none or aes-ecb-pkcs7"`
	Encoding  string `json:"encoding"  flag:"encoding,e"   desc:"text encoding: utf8, base64, base64url, or hex"`
	Key       string `json:"-"         flag:"key"          desc:"cipher key (visible in the process list; prefer --key-file)"`
	KeyFile   string `json:"-"         flag:"key-file"     desc:"file holding the cipher key, or - for stdin"`
}

// cipherDefaults are the transforms a retained session was imported
// with.
type cipherDefaults struct {
	Algorithm cipher.Algorithm
	Encoding  textcodec.Encoding
}

// resolve builds the pipeline config. Precedence per field: flag, then
// an explicitly named --profile, then defaults (when non-nil), then the
// default profile. The key is resolved only when the algorithm needs
// one.
func (p *cipherParams) resolve(cfg *config.Config, defaults *cipherDefaults, prompt io.Writer, logger *slog.Logger) (pipeline.Config, error) {
	profile, err := cfg.Profile(p.Profile)
	if err != nil {
		return pipeline.Config{}, cli.Validation("%w", err).
			WithHint("Profiles are defined under 'profiles' in the config file.")
	}

	algorithmName := profile.Algorithm
	encodingName := profile.Encoding
	if defaults != nil && p.Profile == "" {
		algorithmName = defaults.Algorithm.String()
		encodingName = defaults.Encoding.String()
	}
	if p.Algorithm != "" {
		algorithmName = p.Algorithm
	}
	if p.Encoding != "" {
		encodingName = p.Encoding
	}

	result, err := pipeline.ParseConfig(algorithmName, "", encodingName)
	if err != nil {
		return pipeline.Config{}, cli.Categorize(err)
	}

	if result.Algorithm != cipher.None {
		key, err := p.resolveKey(profile, prompt, logger)
		if err != nil {
			return pipeline.Config{}, err
		}
		result.Key = key
	}

	logger.Debug("cipher resolved",
		"algorithm", result.Algorithm,
		"encoding", result.Encoding,
		"profile", p.Profile,
	)
	return result, nil
}

// resolveKey finds the cipher key: --key, --key-file, SAVEPATCH_KEY,
// the profile's key_file, then an interactive prompt on stdin.
func (p *cipherParams) resolveKey(profile config.Profile, prompt io.Writer, logger *slog.Logger) (string, error) {
	if p.Key != "" {
		logger.Debug("key from --key flag")
		return readKey(func() (*secret.Buffer, error) { return secret.NewFromString(p.Key) })
	}
	if p.KeyFile != "" {
		logger.Debug("key from --key-file", "path", p.KeyFile)
		return readKey(func() (*secret.Buffer, error) { return secret.ReadFromPath(p.KeyFile) })
	}
	if key := os.Getenv(keyEnvironmentVariable); key != "" {
		logger.Debug("key from environment", "variable", keyEnvironmentVariable)
		return readKey(func() (*secret.Buffer, error) { return secret.NewFromString(key) })
	}
	if profile.KeyFile != "" {
		logger.Debug("key from profile key_file", "path", profile.KeyFile)
		return readKey(func() (*secret.Buffer, error) { return secret.ReadFromPath(profile.KeyFile) })
	}

	key, err := readKey(func() (*secret.Buffer, error) { return secret.Prompt(keyPromptInput, prompt, "Key: ") })
	if errors.Is(err, secret.ErrNotTerminal) {
		return "", cli.Validation("no cipher key given").
			WithHint("Pass --key-file, set " + keyEnvironmentVariable + ", or set key_file in the profile.")
	}
	return key, err
}

// readKey opens a secret buffer, copies the key out, and closes the
// buffer.
func readKey(open func() (*secret.Buffer, error)) (string, error) {
	buffer, err := open()
	if err != nil {
		if errors.Is(err, secret.ErrNotTerminal) {
			return "", err
		}
		return "", cli.Validation("reading key: %w", err)
	}
	defer buffer.Close()
	return buffer.String(), nil
}

// usesStdin reports whether the key would be read from stdin.
func (p *cipherParams) usesStdin() bool {
	return p.Key == "" && p.KeyFile == "-"
}
