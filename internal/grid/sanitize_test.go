package grid

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"color", "\x1b[31mred\x1b[0m", "red"},
		{"multiple SGR", "\x1b[1;31;42mfancy\x1b[0m", "fancy"},
		{"OSC with BEL", "\x1b]0;title\x07text", "text"},
		{"OSC hyperlink", "\x1b]8;;https://example.com\x07link\x1b]8;;\x07", "link"},
		{"charset", "\x1b(Bhello", "hello"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripANSI(tt.input))
		})
	}
}

func TestValidateUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "café", "café"},
		{"invalid byte", "hello\x80world", "hello�world"},
		{"invalid continuation", "hello\xc3world", "hello�world"},
		{"multiple invalid", "\x80\x81ok", "��ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUTF8(tt.input))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b c", Sanitize("a\nb\tc"))
	assert.Equal(t, "red �", Sanitize("\x1b[31mred\x1b[0m \x80"))
}

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"pads", "abc", 5, "abc  "},
		{"exact", "abcde", 5, "abcde"},
		{"truncates", "abcdefgh", 5, "abcd…"},
		{"width one", "abc", 1, "a"},
		{"width zero", "abc", 0, ""},
		{"empty", "", 3, "   "},
		{"wide runes", "你好世界", 5, "你好…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.input, tt.width)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.width, runewidth.StringWidth(got))
		})
	}
}

func TestMiddleTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		maxWidth int
	}{
		{"fits", "abc", "abc", 10},
		{"needs truncation", "abcdefghij", "abc…hij", 7},
		{"max 3", "abcdef", "a…f", 3},
		{"max 2", "abcdef", "ab", 2},
		{"max 0", "abcdef", "", 0},
		{"CJK", "你好世界", "你…界", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MiddleTruncate(tt.input, tt.maxWidth))
		})
	}
}
