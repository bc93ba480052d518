package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT whose columns come from the model's db tags.
// Fields tagged `db:"id,omitinsert"` are skipped so serial keys stay with the database.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	fields, err := modelFields(model)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	for _, f := range fields {
		if f.omitInsert {
			continue
		}
		cols = append(cols, f.column)
		vals = append(vals, f.value)
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("model has no insertable columns")
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// Columns lists every db column of the model, optionally qualified with a table alias.
func Columns(model any, alias string) []string {
	fields, err := modelFields(model)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if alias == "" {
			out = append(out, f.column)
			continue
		}
		out = append(out, alias+"."+f.column)
	}
	return out
}

type modelField struct {
	column     string
	value      any
	omitInsert bool
}

func modelFields(model any) ([]modelField, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	out := make([]modelField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		parts := strings.Split(strings.TrimSpace(field.Tag.Get("db")), ",")
		col := strings.TrimSpace(parts[0])
		if col == "" || col == "-" {
			continue
		}
		f := modelField{column: col, value: value.Field(i).Interface()}
		for _, opt := range parts[1:] {
			if strings.TrimSpace(opt) == "omitinsert" {
				f.omitInsert = true
			}
		}
		out = append(out, f)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return out, nil
}
