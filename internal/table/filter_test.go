package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGlobalFilter(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern bool
		match   []string
		miss    []string
	}{
		{"empty matches all", "", false, []string{"", "anything"}, nil},
		{"substring case-insensitive", "JaZ", false, []string{"Jazz", "ajazb"}, []string{"Rock"}},
		{"pattern", "/^ro/", true, []string{"rock"}, []string{"Rock", "Hard rock"}},
		{"pattern with i flag", "/^ro/i", true, []string{"Rock", "rock"}, []string{"Hard rock"}},
		{"ignored flags", "/k$/gu", true, []string{"Rock"}, []string{"Jazz"}},
		{"dotall flag", "/a.b/s", true, []string{"a\nb"}, []string{"ab"}},
		{"unknown flag is literal", "/rock/x", false, []string{"/ROCK/x"}, []string{"rock"}},
		{"duplicate flag is literal", "/rock/ii", false, []string{"/rock/ii"}, []string{"rock"}},
		{"bad pattern is literal", "/(/", false, []string{"a/(/b"}, []string{"("}},
		{"empty pattern is literal", "//", false, []string{"a//b"}, []string{"a"}},
		{"missing trailing slash", "/rock", false, []string{"/rock"}, []string{"rock"}},
		{"slash inside pattern", "/a/b/", true, []string{"xa/by"}, []string{"ab"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseGlobalFilter(tt.text, true)
			assert.Equal(t, tt.pattern, f.IsPattern())
			assert.Equal(t, tt.text, f.Text())
			for _, s := range tt.match {
				assert.True(t, f.Match(s), "expected %q to match %q", tt.text, s)
			}
			for _, s := range tt.miss {
				assert.False(t, f.Match(s), "expected %q not to match %q", tt.text, s)
			}
		})
	}
}

func TestGlobalFilter_MatchValue(t *testing.T) {
	f := ParseGlobalFilter("1", true)
	assert.True(t, f.MatchValue(NumberValue(12)))
	assert.True(t, f.MatchValue(StringValue("a1")))
	assert.False(t, f.MatchValue(Value{Kind: KindBool, Bool: true}))
	assert.False(t, f.MatchValue(Value{Kind: KindNull}))
	assert.False(t, f.MatchValue(Value{Kind: KindOther, Str: `[1]`}))

	assert.True(t, GlobalFilter{}.MatchValue(Value{Kind: KindNull}))
}

func TestTranslateFlags(t *testing.T) {
	prefix, ok := translateFlags("gim")
	assert.True(t, ok)
	assert.Equal(t, "(?im)", prefix)

	prefix, ok = translateFlags("")
	assert.True(t, ok)
	assert.Empty(t, prefix)

	_, ok = translateFlags("q")
	assert.False(t, ok)
}
