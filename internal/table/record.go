// Package table derives the rendered row projection of a data grid from a
// page of records: column accessors, global filtering, sorting, column
// visibility and widths.
package table

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrNotArray is returned by ParseRecords when the body is not a JSON array
// of objects.
var ErrNotArray = errors.New("body is not a JSON array of objects")

// Record is an opaque row entity backed by a raw JSON object.
type Record struct {
	raw []byte
}

// NewRecord wraps raw JSON object bytes. The slice is not copied.
func NewRecord(raw []byte) Record {
	return Record{raw: raw}
}

// ParseRecords splits a JSON array body into records.
func ParseRecords(body []byte) ([]Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNotArray)
	}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, ErrNotArray
	}

	elems := res.Array()
	records := make([]Record, 0, len(elems))
	for i, elem := range elems {
		if !elem.IsObject() {
			return nil, fmt.Errorf("%w: element %d is %s", ErrNotArray, i, elem.Type)
		}
		records = append(records, Record{raw: []byte(elem.Raw)})
	}
	return records, nil
}

// Raw returns the underlying JSON bytes.
func (r Record) Raw() []byte {
	return r.raw
}

// Get reads a gjson path from the record.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Fields decodes the record into a generic map, for template accessors.
func (r Record) Fields() map[string]any {
	m, ok := gjson.ParseBytes(r.raw).Value().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// ID returns the stringified value of the identifier field.
func (r Record) ID(field string) string {
	return valueOf(r.Get(field)).String()
}

// Kind classifies an accessor value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindOther
)

// Value is the accessor-derived value of a cell.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// NumberValue returns a numeric value.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

func valueOf(res gjson.Result) Value {
	switch res.Type {
	case gjson.String:
		return Value{Kind: KindString, Str: res.Str}
	case gjson.Number:
		return Value{Kind: KindNumber, Num: res.Num}
	case gjson.True, gjson.False:
		return Value{Kind: KindBool, Bool: res.Bool()}
	case gjson.JSON:
		return Value{Kind: KindOther, Str: res.Raw}
	default:
		return Value{Kind: KindNull}
	}
}

// Searchable reports whether the global filter considers this value.
func (v Value) Searchable() bool {
	return v.Kind == KindString || v.Kind == KindNumber
}

// String returns the display form. Numbers use the shortest representation.
func (v Value) String() string {
	switch v.Kind {
	case KindString, KindOther:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}
