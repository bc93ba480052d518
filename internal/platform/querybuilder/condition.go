package querybuilder

import (
	"strconv"
	"strings"
)

// Condition renders one predicate of a WHERE clause using $n placeholders.
type Condition interface {
	appendSQL(buf *strings.Builder, args *[]any, argIndex *int)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	buf.WriteString(c.column)
	buf.WriteString(" = ")
	bind(buf, args, argIndex, c.value)
}

type inCondition struct {
	column string
	values []any
	negate bool
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func NotIn(column string, values []any) Condition {
	return inCondition{column: column, values: values, negate: true}
}

func (c inCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	if len(c.values) == 0 {
		// NOT IN over an empty set matches every row.
		if c.negate {
			buf.WriteString("1=1")
		} else {
			buf.WriteString("1=0")
		}
		return
	}

	buf.WriteString(c.column)
	if c.negate {
		buf.WriteString(" NOT IN (")
	} else {
		buf.WriteString(" IN (")
	}
	for i, v := range c.values {
		if i > 0 {
			buf.WriteString(", ")
		}
		bind(buf, args, argIndex, v)
	}
	buf.WriteString(")")
}

type anyCondition struct {
	column string
	array  any
}

// Any matches column against a driver array value, e.g. pq.Array(ids).
func Any(column string, array any) Condition {
	return anyCondition{column: column, array: array}
}

func (c anyCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	buf.WriteString(c.column)
	buf.WriteString(" = ANY(")
	bind(buf, args, argIndex, c.array)
	buf.WriteString(")")
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) appendSQL(buf *strings.Builder, _ *[]any, _ *int) {
	buf.WriteString(c.column)
	buf.WriteString(" IS NULL")
}

type exprCondition struct {
	expr string
	args []any
}

// Expr embeds a raw SQL fragment; each '?' consumes one argument.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	buf.WriteString(rewritePlaceholders(c.expr, c.args, args, argIndex))
}

func bind(buf *strings.Builder, args *[]any, argIndex *int, value any) {
	buf.WriteString(placeholder(*argIndex))
	*args = append(*args, value)
	*argIndex++
}

func appendWhereClause(buf *strings.Builder, conditions []Condition, args *[]any, argIndex *int) {
	for i, c := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		c.appendSQL(buf, args, argIndex)
	}
}

func appendList(buf *strings.Builder, keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	buf.WriteString(keyword)
	buf.WriteString(strings.Join(parts, ", "))
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}

func rewritePlaceholders(expr string, exprArgs []any, args *[]any, argIndex *int) string {
	if len(exprArgs) == 0 {
		return expr
	}

	var out strings.Builder
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] != '?' || next >= len(exprArgs) {
			out.WriteByte(expr[i])
			continue
		}
		bind(&out, args, argIndex, exprArgs[next])
		next++
	}
	return out.String()
}
