package qb

import (
	"database/sql/driver"
	"reflect"
	"regexp"
	"strings"
)

var (
	scalarOperators = map[string]struct{}{
		"=":        {},
		"!=":       {},
		"<>":       {},
		"<":        {},
		"<=":       {},
		">":        {},
		">=":       {},
		"<=>":      {},
		"LIKE":     {},
		"NOT LIKE": {},
	}

	listOperators = map[string]struct{}{
		"IN":     {},
		"NOT IN": {},
	}

	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// ValidIdentifier reports whether name is a plain or table-qualified identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func checkIdentifier(name string) error {
	if !ValidIdentifier(name) {
		return invalidState(ErrInvalidIdentifier, "%q", name)
	}

	return nil
}

// normalizeOperator upper-cases op and collapses inner whitespace ("not  like" -> "NOT LIKE").
func normalizeOperator(op string) string {
	return strings.Join(strings.Fields(strings.ToUpper(op)), " ")
}

func checkOperator(op string, list bool) (string, error) {
	normalized := normalizeOperator(op)

	_, scalar := scalarOperators[normalized]
	_, listOp := listOperators[normalized]

	switch {
	case !scalar && !listOp:
		return "", invalidState(ErrUnsupportedOperator, "%q", op)
	case list && !listOp:
		return "", invalidState(ErrOperatorValueMismatch, "%s needs a single value", normalized)
	case !list && listOp:
		return "", invalidState(ErrOperatorValueMismatch, "%s needs a list value", normalized)
	}

	return normalized, nil
}

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// flatten expands slices and arrays into their elements. Byte slices, byte arrays and
// driver.Valuer implementations are single values.
func flatten(value any) ([]any, bool) {
	if value == nil {
		return []any{nil}, false
	}

	rv := reflect.ValueOf(value)
	if rv.Type().Implements(valuerType) {
		return []any{value}, false
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return []any{value}, false
		}

		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}

		return out, true
	default:
		return []any{value}, false
	}
}
