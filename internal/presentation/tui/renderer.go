package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns node text into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour backed markdown renderer wrapping at width.
// When styled is false, or glamour cannot be initialised, text is returned
// as is so that piped output stays free of escape sequences.
func NewRenderer(styled bool, width int) Renderer {
	if !styled {
		return Plain
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Plain
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Plain returns markdown unchanged, terminated by a newline.
func Plain(markdown string) (string, error) {
	if markdown == "" || strings.HasSuffix(markdown, "\n") {
		return markdown, nil
	}
	return markdown + "\n", nil
}
