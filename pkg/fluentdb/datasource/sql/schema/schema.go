// Package schema lists the tables and columns of a connected database.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/qb"
)

var errInvalidTable = errors.New("invalid table name")

// Querier runs a read query. *sql.DB and the datasource/sql wrappers satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Inspector reads catalog information with dialect specific queries.
type Inspector struct {
	q       Querier
	dialect qb.Dialect
	prefix  string
	sb      sq.StatementBuilderType
}

func New(q Querier, dialect qb.Dialect, prefix string) *Inspector {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == qb.DialectPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	return &Inspector{q: q, dialect: dialect, prefix: prefix, sb: sb}
}

// TablesQuery returns the statement Tables runs.
func (i *Inspector) TablesQuery() (string, []any, error) {
	switch i.dialect {
	case qb.DialectPostgres:
		return i.sb.Select("table_name").
			From("information_schema.tables").
			Where(sq.Eq{"table_schema": "public", "table_type": "BASE TABLE"}).
			OrderBy("table_name").
			ToSql()
	case qb.DialectSQLite:
		return i.sb.Select("name").
			From("sqlite_master").
			Where(sq.Eq{"type": "table"}).
			Where(sq.NotLike{"name": "sqlite_%"}).
			OrderBy("name").
			ToSql()
	default:
		return "SHOW TABLES", nil, nil
	}
}

// ColumnsQuery returns the statement Columns runs for the prefixed table.
func (i *Inspector) ColumnsQuery(table string) (string, []any, error) {
	if !qb.ValidIdentifier(table) {
		return "", nil, fmt.Errorf("%w: %q", errInvalidTable, table)
	}

	name := i.prefix + table

	switch i.dialect {
	case qb.DialectPostgres:
		return i.sb.Select("column_name").
			From("information_schema.columns").
			Where(sq.Eq{"table_name": name}).
			Where("table_schema = current_schema()").
			OrderBy("ordinal_position").
			ToSql()
	case qb.DialectSQLite:
		// FROM takes no bound arguments, the name is inlined as a plain identifier
		if !qb.ValidIdentifier(name) || strings.Contains(name, ".") {
			return "", nil, fmt.Errorf("%w: %q", errInvalidTable, name)
		}

		return i.sb.Select("name").
			From(fmt.Sprintf("pragma_table_info('%s')", name)).
			OrderBy("cid").
			ToSql()
	default:
		return i.sb.Select("COLUMN_NAME").
			From("INFORMATION_SCHEMA.COLUMNS").
			Where(sq.Eq{"TABLE_NAME": name}).
			Where("TABLE_SCHEMA = DATABASE()").
			OrderBy("ORDINAL_POSITION").
			ToSql()
	}
}

// Tables lists every table of the current database or schema, prefixed or not.
func (i *Inspector) Tables(ctx context.Context) ([]string, error) {
	query, args, err := i.TablesQuery()
	if err != nil {
		return nil, err
	}

	return i.names(ctx, query, args)
}

// Columns lists the column names of prefix+table in ordinal order. An unknown table has
// no columns.
func (i *Inspector) Columns(ctx context.Context, table string) ([]string, error) {
	query, args, err := i.ColumnsQuery(table)
	if err != nil {
		return nil, err
	}

	return i.names(ctx, query, args)
}

func (i *Inspector) names(ctx context.Context, query string, args []any) ([]string, error) {
	rows, err := i.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	names := make([]string, 0)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}
