package querybuilder

import (
	"fmt"
	"strings"
)

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix is appended verbatim, typically an ON CONFLICT or RETURNING clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "INSERT INTO %s (%s) VALUES ", b.table, strings.Join(b.columns, ", "))

	args := make([]any, 0, len(b.rows)*len(b.columns))
	argIndex := 1
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			bind(&buf, &args, &argIndex, value)
		}
		buf.WriteString(")")
	}

	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), args, nil
}
