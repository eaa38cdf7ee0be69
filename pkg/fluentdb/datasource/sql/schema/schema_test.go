package schema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/qb"
)

func TestTablesQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  qb.Dialect
		expected string
		args     []any
	}{
		{name: "mysql", dialect: qb.DialectMySQL, expected: "SHOW TABLES"},
		{
			name:     "postgres",
			dialect:  qb.DialectPostgres,
			expected: "SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = $2 ORDER BY table_name",
			args:     []any{"public", "BASE TABLE"},
		},
		{
			name:     "sqlite",
			dialect:  qb.DialectSQLite,
			expected: "SELECT name FROM sqlite_master WHERE type = ? AND name NOT LIKE ? ORDER BY name",
			args:     []any{"table", "sqlite_%"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args, err := New(nil, tc.dialect, "").TablesQuery()

			require.NoError(t, err)
			assert.Equal(t, tc.expected, query)

			if tc.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tc.args, args)
			}
		})
	}
}

func TestColumnsQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  qb.Dialect
		expected string
		args     []any
	}{
		{
			name:     "mysql",
			dialect:  qb.DialectMySQL,
			expected: "SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = ? AND TABLE_SCHEMA = DATABASE() ORDER BY ORDINAL_POSITION",
			args:     []any{"app_users"},
		},
		{
			name:     "postgres",
			dialect:  qb.DialectPostgres,
			expected: "SELECT column_name FROM information_schema.columns WHERE table_name = $1 AND table_schema = current_schema() ORDER BY ordinal_position",
			args:     []any{"app_users"},
		},
		{
			name:     "sqlite",
			dialect:  qb.DialectSQLite,
			expected: "SELECT name FROM pragma_table_info('app_users') ORDER BY cid",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args, err := New(nil, tc.dialect, "app_").ColumnsQuery("users")

			require.NoError(t, err)
			assert.Equal(t, tc.expected, query)

			if tc.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tc.args, args)
			}
		})
	}
}

func TestColumnsQuery_InvalidTable(t *testing.T) {
	_, _, err := New(nil, qb.DialectMySQL, "").ColumnsQuery("users' OR '1'='1")
	require.ErrorIs(t, err, errInvalidTable)

	_, _, err = New(nil, qb.DialectSQLite, "it's_").ColumnsQuery("users")
	require.ErrorIs(t, err, errInvalidTable)

	_, _, err = New(nil, qb.DialectSQLite, "").ColumnsQuery("main.users")
	require.ErrorIs(t, err, errInvalidTable)
}

func TestInspector_MySQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	defer db.Close()

	mock.ExpectQuery("SHOW TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow([]byte("app_orders")).AddRow("app_users"))
	mock.ExpectQuery("SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = ? AND TABLE_SCHEMA = DATABASE() ORDER BY ORDINAL_POSITION").
		WithArgs("app_users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id").AddRow("name"))

	i := New(db, qb.DialectMySQL, "app_")

	tables, err := i.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"app_orders", "app_users"}, tables)

	columns, err := i.Columns(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, columns)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	defer db.Close()

	mock.ExpectQuery("SHOW TABLES").WillReturnError(sql.ErrConnDone)

	_, err = New(db, qb.DialectMySQL, "").Tables(context.Background())

	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	db.SetMaxOpenConns(1)

	defer db.Close()

	_, err = db.Exec(`CREATE TABLE app_users (id INTEGER PRIMARY KEY, name TEXT, email TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE app_orders (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER)`)
	require.NoError(t, err)

	i := New(db, qb.DialectSQLite, "app_")

	tables, err := i.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"app_orders", "app_users"}, tables)

	columns, err := i.Columns(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "email"}, columns)

	columns, err = i.Columns(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, columns)
}
