package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortState_Toggle(t *testing.T) {
	var s SortState

	s = s.Toggle("a", false)
	assert.Equal(t, SortState{{ColumnID: "a"}}, s)
	s = s.Toggle("b", true)
	assert.Equal(t, SortState{{ColumnID: "a"}, {ColumnID: "b"}}, s)
	s = s.Toggle("a", true)
	assert.Equal(t, SortState{{ColumnID: "a", Desc: true}, {ColumnID: "b"}}, s)
	s = s.Toggle("a", true)
	assert.Equal(t, SortState{{ColumnID: "b"}}, s)

	dir, pos := s.Direction("b")
	assert.Equal(t, SortAsc, dir)
	assert.Equal(t, 0, pos)
	dir, pos = s.Direction("a")
	assert.Equal(t, SortNone, dir)
	assert.Equal(t, -1, pos)
}

func TestSortState_ToggleDoesNotAlias(t *testing.T) {
	orig := SortState{{ColumnID: "a"}, {ColumnID: "b"}}
	_ = orig.Toggle("a", true)
	assert.Equal(t, SortState{{ColumnID: "a"}, {ColumnID: "b"}}, orig)
}

func TestCompareAlphanumeric(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"item2", "item10", -1},
		{"item10", "item2", 1},
		{"007", "7", 0},
		{"1a", "a1", -1},
		{"abc", "ab", 1},
		{"", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareAlphanumeric(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestCompareValues(t *testing.T) {
	null := Value{Kind: KindNull}
	assert.Equal(t, -1, compareValues(NumberValue(2), NumberValue(10)))
	assert.Equal(t, 1, compareValues(null, NumberValue(1)))
	assert.Equal(t, -1, compareValues(StringValue("x"), null))
	assert.Equal(t, 0, compareValues(null, null))
	assert.Equal(t, 0, compareValues(StringValue("Rock"), StringValue("rock")))
	assert.Equal(t, -1, compareValues(Value{Kind: KindBool}, Value{Kind: KindBool, Bool: true}))
}
