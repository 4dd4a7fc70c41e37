package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the planflow banner followed by version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`        _             __ _`, "#34d399"},
		{` _ __  | | __ _ _ __ / _| | _____      __`, "#2dd4bf"},
		{`| '_ \ | |/ _' | '_ \ |_| |/ _ \ \ /\ / /`, "#22d3ee"},
		{`| |_) || | (_| | | | |  _| | (_) \ V  V /`, "#38bdf8"},
		{`| .__/ |_|\__,_|_| |_|_| |_|\___/ \_/\_/`, "#60a5fa"},
		{`|_|`, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
