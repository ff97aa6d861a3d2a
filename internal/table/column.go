package table

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Default column geometry, in terminal cells.
const (
	DefaultSize    = 15
	DefaultMinSize = 4
)

// Accessor derives a cell value from a record.
type Accessor func(Record) Value

// ColumnSpec describes one column. Hidden is the initial visibility; the
// Model owns the mutable visibility state afterwards.
type ColumnSpec struct {
	ID       string
	Header   string
	Accessor Accessor
	Sortable bool
	Size     int
	MinSize  int
	MaxSize  int // 0 means unbounded
	Hidden   bool
}

// PathAccessor reads a gjson path such as "firstName" or "address.city".
func PathAccessor(path string) Accessor {
	return func(r Record) Value {
		return valueOf(r.Get(path))
	}
}

// TemplateAccessor renders a text/template with sprig functions against the
// record's decoded fields, e.g. "{{ .firstName }} {{ .lastName }}".
// Execution failures yield a null value.
func TemplateAccessor(name, text string) (Accessor, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("column %s: parse template: %w", name, err)
	}
	return func(r Record) Value {
		var b strings.Builder
		if err := tmpl.Execute(&b, r.Fields()); err != nil {
			return Value{Kind: KindNull}
		}
		return StringValue(b.String())
	}, nil
}

func (c ColumnSpec) minSize() int {
	if c.MinSize > 0 {
		return c.MinSize
	}
	return DefaultMinSize
}

func (c ColumnSpec) maxSize() int {
	if c.MaxSize > 0 {
		return c.MaxSize
	}
	return math.MaxInt
}

func (c ColumnSpec) clamp(size int) int {
	return max(c.minSize(), min(c.maxSize(), size))
}

func (c ColumnSpec) initialSize() int {
	size := c.Size
	if size <= 0 {
		size = DefaultSize
	}
	return c.clamp(size)
}

func (c ColumnSpec) label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.ID
}

func validateColumns(columns []ColumnSpec) error {
	seen := make(map[string]bool, len(columns))
	for i, c := range columns {
		if c.ID == "" {
			return fmt.Errorf("column %d: empty id", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("column %s: duplicate id", c.ID)
		}
		seen[c.ID] = true
		if c.Accessor == nil {
			return fmt.Errorf("column %s: missing accessor", c.ID)
		}
		if c.MaxSize > 0 && c.MinSize > c.MaxSize {
			return errors.New("column " + c.ID + ": min_size exceeds max_size")
		}
	}
	return nil
}
