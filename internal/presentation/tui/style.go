// Package tui holds the terminal presentation helpers of the planflow CLI.
package tui

import (
	"io"

	"github.com/muesli/termenv"
)

// Palette colours CLI output. The zero profile (Ascii) prints plain text.
type Palette struct {
	out *termenv.Output
}

// NewPalette builds a palette for w. Colour is disabled unless styled.
func NewPalette(w io.Writer, styled bool) *Palette {
	opts := []termenv.OutputOption{}
	if !styled {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &Palette{out: termenv.NewOutput(w, opts...)}
}

// Heading renders a card title.
func (p *Palette) Heading(s string) string {
	return p.out.String(s).Bold().Foreground(p.out.Color("#38bdf8")).String()
}

// Muted renders secondary information such as progress.
func (p *Palette) Muted(s string) string {
	return p.out.String(s).Faint().String()
}

// Option renders the index of a selectable answer.
func (p *Palette) Option(s string) string {
	return p.out.String(s).Foreground(p.out.Color("#34d399")).String()
}

// Warn renders a recoverable problem such as an invalid choice.
func (p *Palette) Warn(s string) string {
	return p.out.String(s).Foreground(p.out.Color("#fbbf24")).String()
}
