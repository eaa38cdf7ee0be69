package qb

import (
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// ScanRows binds rows to dest, which must be a pointer to a struct, to a slice of
// structs, or to a slice of single column values. Struct fields are matched to columns
// by their `db` tag or, without one, their snake_case name. Unmatched columns are
// discarded. A struct destination with no rows yields sql.ErrNoRows.
//
// ScanRows does not close rows.
//
//nolint:exhaustive // We only support slice and struct destinations.
func ScanRows(rows *sql.Rows, dest any) error {
	rvo := reflect.ValueOf(dest)
	if !rvo.IsValid() || rvo.Kind() != reflect.Ptr || rvo.IsNil() {
		return errDestNotPointer
	}

	rv := rvo.Elem()

	switch rv.Kind() {
	case reflect.Slice:
		return scanSlice(rows, rv)
	case reflect.Struct:
		return scanStruct(rows, rv)
	default:
		return fmt.Errorf("%w: %s", errUnsupportedDest, rv.Kind())
	}
}

func checkDest(action Action, dest any) error {
	rvo := reflect.ValueOf(dest)
	if !rvo.IsValid() || rvo.Kind() != reflect.Ptr || rvo.IsNil() {
		return invalidState(errDestNotPointer, "got %T", dest)
	}

	if action != ActionCount {
		switch rvo.Elem().Kind() {
		case reflect.Slice, reflect.Struct:
			return nil
		default:
			return invalidState(errUnsupportedDest, "select into %T", dest)
		}
	}

	switch dest.(type) {
	case *int64, *int:
		return nil
	default:
		return invalidState(errUnsupportedDest, "count into %T", dest)
	}
}

func scanSlice(rows *sql.Rows, rv reflect.Value) error {
	elem := rv.Type().Elem()
	out := reflect.MakeSlice(rv.Type(), 0, 0)

	for rows.Next() {
		val := reflect.New(elem)

		if elem.Kind() == reflect.Struct {
			if err := rowToStruct(rows, val.Elem()); err != nil {
				return err
			}
		} else if err := rows.Scan(val.Interface()); err != nil {
			return err
		}

		out = reflect.Append(out, val.Elem())
	}

	if err := rows.Err(); err != nil {
		return err
	}

	rv.Set(out)

	return nil
}

func scanStruct(rows *sql.Rows, rv reflect.Value) error {
	rowFound := false

	for rows.Next() {
		rowFound = true

		if err := rowToStruct(rows, rv); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return err
	}

	if !rowFound {
		return sql.ErrNoRows
	}

	return nil
}

func rowToStruct(rows *sql.Rows, v reflect.Value) error {
	fieldIndex := map[string]int{}

	for i := 0; i < v.Type().NumField(); i++ {
		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}

		name, _ := fieldColumn(f)
		if name == "-" {
			continue
		}

		fieldIndex[name] = i
	}

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	fields := make([]any, 0, len(columns))

	for _, c := range columns {
		if i, ok := fieldIndex[c]; ok {
			fields = append(fields, v.Field(i).Addr().Interface())
		} else {
			var discard any

			fields = append(fields, &discard)
		}
	}

	return rows.Scan(fields...)
}

// scanRecords reads every row into a Record.
func scanRecords(rows *sql.Rows) ([]string, []Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	records := make([]Record, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}

		rec := make(Record, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}

			rec[c] = values[i]
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, records, nil
}

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// ToSnakeCase converts a Go field name to its column name, e.g. UserID -> user_id.
func ToSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")

	return strings.ToLower(snake)
}
