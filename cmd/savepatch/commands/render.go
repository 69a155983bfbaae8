// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/savepatch/lib/binhash"
	"github.com/bureau-foundation/savepatch/lib/envelope"
)

// Colors are ANSI 256-color codes.
const (
	colorTitle = lipgloss.Color("75")
	colorLabel = lipgloss.Color("245")
	colorValue = lipgloss.Color("252")
	colorGood  = lipgloss.Color("114")
	colorBad   = lipgloss.Color("203")
)

// labelWidth fits the longest label plus a gap.
const labelWidth = 16

// styles renders report blocks. Colors are emitted only when the target
// is a color-capable terminal.
type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
}

// newStyles builds styles for w, with color only when color is true.
func newStyles(w io.Writer, color bool) styles {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return styles{
		title: renderer.NewStyle().Bold(true).Foreground(colorTitle),
		label: renderer.NewStyle().Foreground(colorLabel).Width(labelWidth),
		value: renderer.NewStyle().Foreground(colorValue),
		good:  renderer.NewStyle().Bold(true).Foreground(colorGood),
		bad:   renderer.NewStyle().Bold(true).Foreground(colorBad),
	}
}

// row is one label/value line of a report.
type row struct {
	label string
	value string
}

// block renders a titled list of rows.
func (s styles) block(title string, rows []row) string {
	var builder strings.Builder
	builder.WriteString(s.title.Render(title))
	builder.WriteByte('\n')
	for _, r := range rows {
		builder.WriteString("  ")
		builder.WriteString(s.label.Render(r.label))
		builder.WriteString(s.value.Render(r.value))
		builder.WriteByte('\n')
	}
	return builder.String()
}

// status renders a pass/fail marker.
func (s styles) status(ok bool) string {
	if ok {
		return s.good.Render("ok")
	}
	return s.bad.Render("FAIL")
}

// diagnosticRows lists record geometry in the order the bytes appear.
func diagnosticRows(diagnostics envelope.Diagnostics) []row {
	return []row{
		{"File size", formatBytes(diagnostics.TotalSize)},
		{"Header size", formatBytes(diagnostics.HeaderSize)},
		{"Length prefix", fmt.Sprintf("%d (%s)", diagnostics.LengthPrefixOffset, formatBytes(diagnostics.LengthPrefixSize))},
		{"String start", fmt.Sprintf("%d", diagnostics.PayloadStart)},
		{"String end", fmt.Sprintf("%d", diagnostics.PayloadEnd)},
		{"String size", formatBytes(diagnostics.PayloadSize)},
		{"Footer size", formatBytes(diagnostics.FooterSize)},
	}
}

// renderDiagnostics renders the geometry block, with the digest row
// when digest is non-nil.
func renderDiagnostics(s styles, title string, diagnostics envelope.Diagnostics, digest *binhash.Digest) string {
	rows := diagnosticRows(diagnostics)
	if digest != nil {
		rows = append(rows, row{"BLAKE3", digest.String()})
	}
	return s.block(title, rows)
}

func formatBytes(n int) string {
	if n == 1 {
		return "1 byte"
	}
	return fmt.Sprintf("%d bytes", n)
}
