package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow/internal/presentation/tui"
)

func TestParseChoices(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		multi   bool
		want    []int
		wantErr bool
	}{
		{name: "single", reply: "2", want: []int{1}},
		{name: "multi sorted", reply: "3, 1", multi: true, want: []int{0, 2}},
		{name: "multi spaces", reply: "1 2", multi: true, want: []int{0, 1}},
		{name: "duplicates collapse", reply: "2,2", multi: true, want: []int{1}},
		{name: "several for single", reply: "1,2", wantErr: true},
		{name: "out of range", reply: "4", wantErr: true},
		{name: "zero", reply: "0", wantErr: true},
		{name: "not a number", reply: "house", wantErr: true},
		{name: "empty", reply: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChoices(tt.reply, 3, tt.multi)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_Commands(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  hello \nback\nQ\n"), &out, tui.NewPalette(&out, false))

	line, err := p.Line("Name")
	require.NoError(t, err)
	assert.Equal(t, "hello", line)
	assert.Contains(t, out.String(), "Name > ")

	_, err = p.Line("")
	assert.ErrorIs(t, err, ErrBack)

	_, err = p.Line("")
	assert.ErrorIs(t, err, ErrQuit)

	_, err = p.Line("")
	assert.ErrorIs(t, err, ErrQuit, "end of input quits")
}

func TestPrompter_ChooseRetries(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("9\n2\n"), &out, tui.NewPalette(&out, false))

	idx, err := p.Choose(2, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, idx)
	assert.Contains(t, out.String(), `"9" is not an option between 1 and 2`)
}

func TestPrompter_Confirm(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("yes\n\n"), &out, tui.NewPalette(&out, false))

	ok, err := p.Confirm("Pay now?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Pay now?")
	require.NoError(t, err)
	assert.False(t, ok)
}
