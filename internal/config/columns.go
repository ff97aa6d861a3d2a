package config

import (
	"fmt"

	"github.com/runger/datagrid/internal/table"
)

// ColumnSpecs builds the table columns. Template columns are parsed here,
// so a malformed template fails before the grid starts.
func (c *Config) ColumnSpecs() ([]table.ColumnSpec, error) {
	specs := make([]table.ColumnSpec, 0, len(c.Columns))
	for _, col := range c.Columns {
		acc := table.PathAccessor(col.Accessor)
		if col.Template != "" {
			var err error
			acc, err = table.TemplateAccessor(col.ID, col.Template)
			if err != nil {
				return nil, fmt.Errorf("columns: %w", err)
			}
		}
		specs = append(specs, table.ColumnSpec{
			ID:       col.ID,
			Header:   col.Header,
			Accessor: acc,
			Sortable: col.Sortable,
			Size:     col.Size,
			MinSize:  col.MinSize,
			MaxSize:  col.MaxSize,
			Hidden:   col.Hidden,
		})
	}
	return specs, nil
}
