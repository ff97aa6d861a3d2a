package table

import (
	"cmp"
	"strings"
)

// Direction is a column's sort direction.
type Direction string

const (
	SortNone Direction = "none"
	SortAsc  Direction = "asc"
	SortDesc Direction = "desc"
)

// SortKey is one entry of a SortState.
type SortKey struct {
	ColumnID string
	Desc     bool
}

// SortState is the ordered list of sorted columns. Empty means unsorted.
type SortState []SortKey

// Direction returns the column's direction and its position in the state
// (-1 when unsorted).
func (s SortState) Direction(columnID string) (Direction, int) {
	for i, k := range s {
		if k.ColumnID == columnID {
			if k.Desc {
				return SortDesc, i
			}
			return SortAsc, i
		}
	}
	return SortNone, -1
}

// Toggle advances the column through none -> asc -> desc -> none. Without
// multi the result contains at most this column; with multi the column is
// updated in place, appended or removed, leaving the others untouched.
func (s SortState) Toggle(columnID string, multi bool) SortState {
	cur, pos := s.Direction(columnID)
	next := nextDirection(cur)

	if !multi {
		if next == SortNone {
			return SortState{}
		}
		return SortState{{ColumnID: columnID, Desc: next == SortDesc}}
	}

	out := make(SortState, 0, len(s)+1)
	out = append(out, s...)
	switch {
	case pos < 0:
		out = append(out, SortKey{ColumnID: columnID})
	case next == SortNone:
		out = append(out[:pos], out[pos+1:]...)
	default:
		out[pos].Desc = next == SortDesc
	}
	return out
}

func nextDirection(d Direction) Direction {
	switch d {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortNone
	}
}

// compareValues orders two cell values ascending. Nulls sort after
// everything else; numbers compare numerically, everything else with an
// alphanumeric ordering of the lowercased display strings.
func compareValues(a, b Value) int {
	aNull, bNull := a.Kind == KindNull, b.Kind == KindNull
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return 1
	case bNull:
		return -1
	}

	if a.Kind == KindNumber && b.Kind == KindNumber {
		return cmp.Compare(a.Num, b.Num)
	}
	if a.Kind == KindBool && b.Kind == KindBool {
		return cmp.Compare(boolRank(a.Bool), boolRank(b.Bool))
	}
	return compareAlphanumeric(strings.ToLower(a.String()), strings.ToLower(b.String()))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareAlphanumeric compares strings chunk by chunk, where digit runs
// compare by numeric value and sort before non-digit runs.
func compareAlphanumeric(a, b string) int {
	for a != "" && b != "" {
		ca, ra := nextChunk(a)
		cb, rb := nextChunk(b)
		aDigits, bDigits := isDigit(ca[0]), isDigit(cb[0])

		switch {
		case aDigits && bDigits:
			if c := compareDigits(ca, cb); c != 0 {
				return c
			}
		case aDigits:
			return -1
		case bDigits:
			return 1
		default:
			if c := strings.Compare(ca, cb); c != 0 {
				return c
			}
		}
		a, b = ra, rb
	}
	return cmp.Compare(len(a), len(b))
}

func nextChunk(s string) (chunk, rest string) {
	digits := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
