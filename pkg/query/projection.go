// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps field names to qualified column references (alias.column).
// A field resolves by its view name or its column name, case-insensitively,
// so "CreatedAt", "createdat", and "created_at" all name the same column.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project adds a column under viewName. Columns are selected in the order
// they are projected, which must match the order a scan function reads them.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[strings.ToLower(viewName)] = qualified
	p.columns[strings.ToLower(column)] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// From returns the table reference with alias (schema.table alias).
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Lookup resolves a field to its qualified column.
func (p *ProjectionMap) Lookup(field string) (string, bool) {
	col, ok := p.columns[strings.ToLower(field)]
	return col, ok
}

// Column returns the qualified column for field, or field itself if it is
// not projected. Only use it with names chosen in code, never client input.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.Lookup(field); ok {
		return col
	}
	return field
}

// Columns returns the select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}
