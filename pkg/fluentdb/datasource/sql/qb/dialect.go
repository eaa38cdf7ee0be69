package qb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect represents a SQL dialect that qb can render statements for.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

var errUnsupportedDialect = errors.New("[builder] unsupported dialect")

// ParseDialect resolves a dialect name or one of its aliases.
//
// Supported values include:
//   - mysql, mariadb (and the empty string)
//   - postgres, postgresql, supabase, cockroachdb
//   - sqlite, sqlite3
func ParseDialect(dialect string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "", string(DialectMySQL), "mariadb":
		return DialectMySQL, nil
	case string(DialectPostgres), "postgresql", "supabase", "cockroachdb":
		return DialectPostgres, nil
	case string(DialectSQLite), "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedDialect, dialect)
	}
}

// Quote quotes an identifier, quoting each part of a qualified name separately.
func (d Dialect) Quote(ident string) string {
	q := "`"
	if d == DialectPostgres {
		q = `"`
	}

	return q + strings.ReplaceAll(ident, ".", q+"."+q) + q
}

// operator spells op for d, rewriting the MySQL null-safe equality <=>.
func (d Dialect) operator(op string) string {
	if op != "<=>" {
		return op
	}

	switch d {
	case DialectPostgres:
		return "IS NOT DISTINCT FROM"
	case DialectSQLite:
		return "IS"
	default:
		return op
	}
}

// ordersWrites reports whether UPDATE and DELETE accept an ORDER BY clause.
func (d Dialect) ordersWrites() bool {
	return d == DialectMySQL
}

func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var (
		counter = 1
		out     strings.Builder
	)

	out.Grow(len(query) + 8)

	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			out.WriteByte(query[i])
			continue
		}

		out.WriteByte('$')
		out.WriteString(strconv.Itoa(counter))
		counter++
	}

	return out.String()
}
