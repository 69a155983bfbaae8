// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition (counted as 2 edits)
		{"kitten", "sitting", 3},
		{"import", "imprt", 1},
		{"export", "exprot", 2},
		{"session", "sesion", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"abc", "abd"},
		{"hello", "helo"},
		{"verify", "verfiy"},
	}

	for _, pair := range pairs {
		forward := levenshtein(pair[0], pair[1])
		reverse := levenshtein(pair[1], pair[0])
		if forward != reverse {
			t.Errorf("levenshtein(%q, %q) = %d, but reverse = %d",
				pair[0], pair[1], forward, reverse)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "import"},
		{Name: "export"},
		{Name: "extract"},
		{Name: "inspect"},
		{Name: "verify"},
		{Name: "version"},
		{Name: "session"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"imprt", "import"},   // missing letter
		{"exprot", "export"},  // transposition
		{"extrct", "extract"}, // missing letter
		{"inspekt", "inspect"},
		{"verfy", "verify"},
		{"sesion", "session"},
		{"zzzzzzzzz", ""}, // nothing close
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got := suggestCommand(test.input, commands)
			if got != test.want {
				t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.StringP("algorithm", "a", "", "")
		flagSet.StringP("encoding", "e", "", "")
		flagSet.String("key-file", "", "")
		flagSet.Bool("pretty", false, "")
		flagSet.Bool("json", false, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "close typo",
			args: []string{"--algoritm"},
			want: "--algorithm",
		},
		{
			name: "pretty typo",
			args: []string{"--prety"},
			want: "--pretty",
		},
		{
			name: "key file typo",
			args: []string{"--keyfile"},
			want: "--key-file",
		},
		{
			name: "nothing close",
			args: []string{"--zzzzzzzzz"},
			want: "",
		},
		{
			name: "no flags",
			args: []string{"positional"},
			want: "",
		},
		{
			name: "flag with equals",
			args: []string{"--encodng=hex"},
			want: "--encoding",
		},
		{
			name: "known flags are skipped",
			args: []string{"--json", "--prety"},
			want: "--pretty",
		},
		{
			name: "stops at terminator",
			args: []string{"--", "--prety"},
			want: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := suggestFlag(test.args, makeFlagSet())
			if got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
