package qb

import (
	"reflect"
	"sort"
	"strings"
)

// Field is one column/value pair of a Row.
type Field struct {
	Column string
	Value  any
}

// Set returns the Field column = value.
func Set(column string, value any) Field {
	return Field{Column: column, Value: value}
}

// Row is an ordered INSERT/UPDATE payload. Its order is the column order and the
// placeholder order of the rendered statement.
type Row []Field

// Columns returns the column names in order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}

	return cols
}

// Values returns the values in column order.
func (r Row) Values() []any {
	vals := make([]any, len(r))
	for i, f := range r {
		vals[i] = f.Value
	}

	return vals
}

// dedupe keeps the first position of a repeated column and its last value.
func (r Row) dedupe() Row {
	out := make(Row, 0, len(r))
	seen := make(map[string]int, len(r))

	for _, f := range r {
		if i, ok := seen[f.Column]; ok {
			out[i].Value = f.Value
			continue
		}

		seen[f.Column] = len(out)
		out = append(out, f)
	}

	return out
}

// RowFromMap builds a Row from m with its keys in lexical order.
func RowFromMap(m map[string]any) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	row := make(Row, 0, len(keys))
	for _, k := range keys {
		row = append(row, Set(k, m[k]))
	}

	return row
}

// RowFromStruct builds a Row from the exported fields of a struct, in declaration order.
// Columns come from the `db` tag, or the snake_case field name. `db:"-"` skips a field and
// `db:"name,omitempty"` skips it when it holds its zero value.
func RowFromStruct(v any) (Row, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errPayloadType
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil, errPayloadType
	}

	rt := rv.Type()
	row := make(Row, 0, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}

		name, omitEmpty := fieldColumn(f)
		if name == "-" {
			continue
		}

		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}

		row = append(row, Set(name, fv.Interface()))
	}

	return row, nil
}

func fieldColumn(f reflect.StructField) (name string, omitEmpty bool) {
	tag := f.Tag.Get("db")
	name, opts, _ := strings.Cut(tag, ",")

	if name == "" {
		name = ToSnakeCase(f.Name)
	}

	return name, opts == "omitempty"
}
