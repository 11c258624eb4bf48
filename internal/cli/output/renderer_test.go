package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(mode Mode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"TEXT", ModeText, false},
		{" markdown ", ModeMarkdown, false},
		{"json", ModeJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "auto, text, markdown, json")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		tty  bool
		want Mode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"empty means auto", "", false, ModeMarkdown},
		{"explicit text piped", ModeText, false, ModeText},
		{"explicit json on terminal", ModeJSON, true, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newBuffered(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, errOut := newBuffered(ModeMarkdown, false)

	r.Header(1, "named query")
	r.KeyValue("Entities", "2")
	r.StatusLine("orders.yaml", "success", "3 records")
	r.Success("bound")
	r.Error("broken")

	got := out.String()
	assert.Contains(t, got, "# Named Query\n")
	assert.Contains(t, got, "- **Entities:** 2")
	assert.Contains(t, got, "- [success] orders.yaml (3 records)")
	assert.Contains(t, got, "**OK** bound")
	assert.Equal(t, "**ERROR** broken\n", errOut.String())
}

func TestRenderer_TextWithoutTerminalHasNoEscapes(t *testing.T) {
	r, out, _ := newBuffered(ModeText, false)

	r.Header(2, "entities")
	r.Success("done")
	r.StatusLine("a.yaml", "error", "")

	got := out.String()
	assert.Contains(t, got, "Entities")
	assert.Contains(t, got, "✓ done")
	assert.Contains(t, got, "✗ a.yaml")
	assert.NotContains(t, got, "\x1b[")
}

func TestRenderer_Table(t *testing.T) {
	headers := []string{"Name", "Origin"}
	rows := [][]string{{"Order", "shop.yaml:13"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newBuffered(ModeMarkdown, false)
		r.Table(headers, rows)
		assert.Contains(t, out.String(), "| Name | Origin |")
		assert.Contains(t, out.String(), "| Order | shop.yaml:13 |")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newBuffered(ModeText, false)
		r.Table(headers, rows)
		assert.Contains(t, out.String(), "┌")
		assert.Contains(t, out.String(), "shop.yaml:13")
	})
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newBuffered(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"entity": 2}))
	assert.JSONEq(t, `{"entity": 2}`, out.String())

	assert.Error(t, r.JSON(make(chan int)))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Summary", FormatHeader(2, "Summary"))
	assert.Equal(t, "# Summary", FormatHeader(0, "Summary"))
	assert.Equal(t, "- **Driver:** sqlite", FormatKeyValue("Driver", "sqlite"))
}
