// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/savepatch/lib/cipher"
	"github.com/bureau-foundation/savepatch/lib/textcodec"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "SAVEPATCH_CONFIG"

// DefaultProfileName is the profile created by [Default].
const DefaultProfileName = "default"

// Config is the savepatch configuration.
type Config struct {
	// DefaultProfile names the profile used when --profile is not given.
	DefaultProfile string `yaml:"default_profile"`

	// SessionPath is where import persists the located envelope for a
	// later export.
	// Default: ${HOME}/.cache/savepatch/session
	SessionPath string `yaml:"session_path"`

	// SessionCompression selects how the session file is compressed:
	// auto, none, lz4, or zstd.
	// Default: auto
	SessionCompression string `yaml:"session_compression"`

	// ExportFilename is the output path export uses when --out is not
	// given.
	// Default: save_export.dat
	ExportFilename string `yaml:"export_filename"`

	// Profiles are named cipher settings.
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile is a named set of cipher settings.
type Profile struct {
	// Algorithm is none or aes-ecb-pkcs7.
	Algorithm string `yaml:"algorithm"`

	// Encoding is utf8, base64, base64url, or hex.
	Encoding string `yaml:"encoding"`

	// KeyFile is a file holding the cipher key. Optional: without it
	// the key comes from a flag, the SAVEPATCH_KEY variable, or a
	// terminal prompt.
	KeyFile string `yaml:"key_file,omitempty"`
}

// Default returns the built-in configuration, used as-is when no config
// file is named and as the base a config file is merged over.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		DefaultProfile:     DefaultProfileName,
		SessionPath:        filepath.Join(homeDir, ".cache", "savepatch", "session"),
		SessionCompression: "auto",
		ExportFilename:     "save_export.dat",
		Profiles: map[string]Profile{
			DefaultProfileName: {
				Algorithm: cipher.AESECBPKCS7.String(),
				Encoding:  textcodec.Base64.String(),
			},
		},
	}
}

// Load loads the file named by SAVEPATCH_CONFIG. When the variable is
// unset the built-in defaults are returned; there is no search of
// well-known directories.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, merged over [Default].
// ${VAR} and ${VAR:-default} patterns in path-valued fields are
// expanded after loading. The result is not validated; call Validate.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// Profile returns the named profile, or the default profile when name
// is empty.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (have: %v)", name, c.ProfileNames())
	}
	return profile, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.SessionPath = expandVars(c.SessionPath, vars)
	c.ExportFilename = expandVars(c.ExportFilename, vars)
	for name, profile := range c.Profiles {
		profile.KeyFile = expandVars(profile.KeyFile, vars)
		c.Profiles[name] = profile
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.SessionPath == "" {
		errs = append(errs, errors.New("session_path is required"))
	}
	if c.ExportFilename == "" {
		errs = append(errs, errors.New("export_filename is required"))
	}

	compressionValues := []string{"auto", "none", "lz4", "zstd"}
	if !contains(compressionValues, c.SessionCompression) {
		errs = append(errs, fmt.Errorf("session_compression must be one of: %v", compressionValues))
	}

	if _, ok := c.Profiles[c.DefaultProfile]; !ok {
		errs = append(errs, fmt.Errorf("default_profile %q is not defined under profiles", c.DefaultProfile))
	}

	for _, name := range c.ProfileNames() {
		profile := c.Profiles[name]
		algorithm, err := cipher.ParseAlgorithm(profile.Algorithm)
		if err != nil {
			errs = append(errs, fmt.Errorf("profiles.%s.algorithm: %w", name, err))
		}
		encoding, err := textcodec.ParseEncoding(profile.Encoding)
		if err != nil {
			errs = append(errs, fmt.Errorf("profiles.%s.encoding: %w", name, err))
		}
		if err == nil && algorithm == cipher.AESECBPKCS7 && encoding == textcodec.UTF8 {
			errs = append(errs, fmt.Errorf("profiles.%s: %s needs base64, base64url, or hex encoding", name, algorithm))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
