// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Algorithm string   `flag:"algorithm,a" desc:"cipher algorithm"`
		Verbose   bool     `flag:"verbose,v" desc:"enable verbose output"`
		Width     int      `flag:"width" desc:"render width"`
		Tags      []string `flag:"tags" desc:"tag list"`
		Untagged  string   // no flag tag, skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"-a", "aes-ecb-pkcs7",
		"-v",
		"--width", "80",
		"--tags", "a,b,c",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Algorithm != "aes-ecb-pkcs7" {
		t.Errorf("Algorithm = %q, want %q", p.Algorithm, "aes-ecb-pkcs7")
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.Width != 80 {
		t.Errorf("Width = %d, want 80", p.Width)
	}
	if strings.Join(p.Tags, ",") != "a,b,c" {
		t.Errorf("Tags = %v, want [a b c]", p.Tags)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field should not produce a flag")
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Encoding string   `flag:"encoding" default:"base64"`
		Pretty   bool     `flag:"pretty" default:"true"`
		Width    int      `flag:"width" default:"100"`
		Tags     []string `flag:"tags" default:"x,y"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Encoding != "base64" || !p.Pretty || p.Width != 100 || strings.Join(p.Tags, ",") != "x,y" {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestBindFlags_DefaultsOverriddenByCLI(t *testing.T) {
	type params struct {
		Encoding string `flag:"encoding" default:"base64"`
		Pretty   bool   `flag:"pretty" default:"true"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--encoding", "hex", "--pretty=false"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Encoding != "hex" {
		t.Errorf("Encoding = %q, want hex", p.Encoding)
	}
	if p.Pretty {
		t.Error("Pretty = true, want false")
	}
}

func TestBindFlags_EmbeddedStructRecursion(t *testing.T) {
	type shared struct {
		Profile string `flag:"profile" desc:"config profile"`
	}
	type params struct {
		shared
		JSONOutput
		Out string `flag:"out,o" desc:"output path"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--profile", "game", "--json", "-o", "out.dat"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Profile != "game" {
		t.Errorf("Profile = %q, want game", p.Profile)
	}
	if !p.OutputJSON {
		t.Error("OutputJSON = false, want true")
	}
	if p.Out != "out.dat" {
		t.Errorf("Out = %q, want out.dat", p.Out)
	}
}

func TestBindFlags_ErrorNotPointer(t *testing.T) {
	type params struct {
		Name string `flag:"name"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(params{}, flagSet); err == nil {
		t.Error("expected error for non-pointer params")
	}
}

func TestBindFlags_ErrorNotStruct(t *testing.T) {
	value := "not a struct"
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&value, flagSet); err == nil {
		t.Error("expected error for pointer to non-struct")
	}
}

func TestBindFlags_ErrorBadDefault(t *testing.T) {
	type params struct {
		Width int `flag:"width" default:"wide"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(&params{}, flagSet)
	if err == nil || !strings.Contains(err.Error(), "--width") {
		t.Errorf("expected default error naming --width, got %v", err)
	}
}

func TestBindFlags_ErrorUnsupportedType(t *testing.T) {
	type params struct {
		Ratio float32 `flag:"ratio"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params{}, flagSet); err == nil {
		t.Error("expected error for unsupported field type")
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams should panic on invalid params")
		}
	}()
	FlagsFromParams("bad", "not a pointer")
}

func TestBindFlags_PositionalArgsRemain(t *testing.T) {
	type params struct {
		Out string `flag:"out"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"slot1.dat", "--out", "slot1.json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Out != "slot1.json" {
		t.Errorf("Out = %q, want slot1.json", p.Out)
	}
	if args := flagSet.Args(); len(args) != 1 || args[0] != "slot1.dat" {
		t.Errorf("Args() = %v, want [slot1.dat]", args)
	}
}
