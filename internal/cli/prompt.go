package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/planflow/internal/presentation/tui"
)

var (
	// ErrQuit is returned when the user leaves the session or input ends.
	ErrQuit = errors.New("quit")
	// ErrBack is returned when the user asks for the previous card.
	ErrBack = errors.New("back")
)

// Prompter reads answers line by line. The words "back", "quit" and "q"
// are reserved at every prompt.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
	pal *tui.Palette
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer, pal *tui.Palette) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, pal: pal}
}

// Line prints label and returns the trimmed reply.
func (p *Prompter) Line(label string) (string, error) {
	if label != "" {
		fmt.Fprintf(p.out, "%s ", label)
	}
	fmt.Fprint(p.out, "> ")
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("input error: %w", err)
		}
		return "", ErrQuit
	}
	line := strings.TrimSpace(p.in.Text())
	switch strings.ToLower(line) {
	case "back":
		return "", ErrBack
	case "quit", "q", "exit":
		return "", ErrQuit
	}
	return line, nil
}

// Choose asks until the reply selects one option (or, when multi, one or
// more options) among n and returns the 0-based indices.
func (p *Prompter) Choose(n int, multi bool) ([]int, error) {
	label := "Choose an option"
	if multi {
		label = "Choose one or more options, separated by commas"
	}
	for {
		line, err := p.Line(label)
		if err != nil {
			return nil, err
		}
		idx, err := ParseChoices(line, n, multi)
		if err == nil {
			return idx, nil
		}
		fmt.Fprintln(p.out, p.pal.Warn(err.Error()))
	}
}

// Confirm asks a yes/no question. An empty reply means no.
func (p *Prompter) Confirm(label string) (bool, error) {
	line, err := p.Line(label + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ParseChoices turns a reply such as "2" or "1, 3" into sorted 0-based
// indices below n.
func ParseChoices(reply string, n int, multi bool) ([]int, error) {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil, errors.New("no option selected")
	}
	if !multi && len(fields) > 1 {
		return nil, errors.New("select exactly one option")
	}

	var out []int
	for _, f := range fields {
		i, err := strconv.Atoi(f)
		if err != nil || i < 1 || i > n {
			return nil, fmt.Errorf("%q is not an option between 1 and %d", f, n)
		}
		if !slices.Contains(out, i-1) {
			out = append(out, i-1)
		}
	}
	slices.Sort(out)
	return out, nil
}
