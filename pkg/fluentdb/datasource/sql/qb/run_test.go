package qb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend failure")

func newMockBuilder(t *testing.T, opts ...Option) (*Builder, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return New(db, opts...), mock
}

func assertReset(t *testing.T, b *Builder) {
	t.Helper()

	assert.Equal(t, ActionNone, b.action)
	assert.Empty(t, b.table)
	assert.Empty(t, b.predicates)
	assert.Empty(t, b.bound)
	assert.Empty(t, b.orderings)
	assert.Empty(t, b.payload)
	assert.NoError(t, b.err)
}

func TestRun_Select(t *testing.T) {
	b, mock := newMockBuilder(t, WithPrefix("app_"))

	mock.ExpectPrepare("SELECT * FROM app_users WHERE age > ? AND role IN (?,?) ORDER BY name ASC").
		ExpectQuery().
		WithArgs(18, "admin", "dev").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("ann")).
			AddRow(int64(2), "bob"))

	res, err := b.Table("users").
		Where("age", ">", 18).
		Where("role", "IN", []string{"admin", "dev"}).
		OrderBy("name").
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ActionSelect, res.Action)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, []Record{
		{"id": int64(1), "name": "ann"},
		{"id": int64(2), "name": "bob"},
	}, res.Rows)
	assertReset(t, b)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SelectNoRows(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("SELECT * FROM users WHERE id = ?").
		ExpectQuery().
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := b.Table("users").Where("id", 404).Run(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_Insert(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("INSERT INTO users(`a`,`b`) VALUES (?,?)").
		ExpectExec().
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(42, 1))

	res, err := b.Table("users").Insert(Row{Set("a", 1), Set("b", 2)}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ActionInsert, res.Action)
	assert.Equal(t, int64(42), res.LastInsertID)
	assert.Equal(t, int64(1), res.RowsAffected)
	assertReset(t, b)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_InsertWithoutLastInsertID(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("INSERT INTO users(`a`) VALUES (?)").
		ExpectExec().
		WithArgs(1).
		WillReturnResult(sqlmock.NewErrorResult(errBackend))

	res, err := b.Table("users").Insert(Row{Set("a", 1)}).Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, res.LastInsertID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_UpdateBindsPayloadFirst(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("UPDATE users SET `a` = ? WHERE id = ?").
		ExpectExec().
		WithArgs(1, 5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := b.Table("users").Update(Row{Set("a", 1)}).Where("id", "=", 5).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsAffected)
	assertReset(t, b)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_Delete(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("DELETE FROM users WHERE id IN (?,?)").
		ExpectExec().
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))

	res, err := b.Table("users").Delete().Where("id", "in", []int{1, 2}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ActionDelete, res.Action)
	assert.Equal(t, int64(2), res.RowsAffected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_Count(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("SELECT COUNT(*) FROM users WHERE status = ?").
		ExpectQuery().
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(7)))

	res, err := b.Table("users").Count().Where("status", "active").Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Count)
	assertReset(t, b)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ReusesBuilder(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("DELETE FROM users WHERE id = ?").
		ExpectExec().
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare("SELECT COUNT(*) FROM users").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(0)))

	_, err := b.Table("users").Delete().Where("id", 1).Run(context.Background())
	require.NoError(t, err)

	res, err := b.Table("users").Count().Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(mock sqlmock.Sqlmock)
		build  func(b *Builder) *Builder
		kind   error
		driver bool
	}{
		{
			name:  "no action",
			setup: func(sqlmock.Sqlmock) {},
			build: func(b *Builder) *Builder { return b },
			kind:  ErrInvalidStatementState,
		},
		{
			name:  "empty insert",
			setup: func(sqlmock.Sqlmock) {},
			build: func(b *Builder) *Builder { return b.Table("users").Insert(nil) },
			kind:  ErrInvalidStatementState,
		},
		{
			name: "prepare rejected",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("SELECT * FROM missing").WillReturnError(errBackend)
			},
			build:  func(b *Builder) *Builder { return b.Table("missing") },
			kind:   ErrPreparationFailed,
			driver: true,
		},
		{
			name: "exec rejected",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("UPDATE users SET `a` = ? WHERE id = ?").
					ExpectExec().
					WithArgs(1, 2).
					WillReturnError(errBackend)
			},
			build: func(b *Builder) *Builder {
				return b.Table("users").Update(Row{Set("a", 1)}).Where("id", 2)
			},
			kind:   ErrExecutionFailed,
			driver: true,
		},
		{
			name: "query rejected",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("SELECT COUNT(*) FROM users").
					ExpectQuery().
					WillReturnError(errBackend)
			},
			build:  func(b *Builder) *Builder { return b.Table("users").Count() },
			kind:   ErrExecutionFailed,
			driver: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, mock := newMockBuilder(t)
			tc.setup(mock)

			res, err := tc.build(b).Run(context.Background())

			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.kind)

			if tc.driver {
				assert.ErrorIs(t, err, errBackend)

				var stmtErr *StatementError
				require.ErrorAs(t, err, &stmtErr)
				assert.NotEmpty(t, stmtErr.Query)
			}

			assertReset(t, b)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRun_ConnectionUnavailable(t *testing.T) {
	b := New(nil).Table("users").Where("id", 1)

	res, err := b.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrConnectionUnavailable)
	assert.Equal(t, "[builder] no connection available (SELECT)", err.Error())

	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", stmtErr.Query)
	assertReset(t, b)
}

func TestRun_InvalidStateWithoutConnection(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder) *Builder
		cause error
	}{
		{name: "no action", build: func(b *Builder) *Builder { return b }, cause: errNoAction},
		{name: "no table", build: func(b *Builder) *Builder { return b.Count() }, cause: errNoTable},
		{
			name:  "empty update",
			build: func(b *Builder) *Builder { return b.Table("users").Update(Row{}) },
			cause: errEmptyPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.build(New(nil))

			res, err := b.Run(context.Background())

			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidStatementState)
			assert.ErrorIs(t, err, tc.cause)
			assert.NotErrorIs(t, err, ErrConnectionUnavailable)
			assertReset(t, b)
		})
	}
}

func TestRunInto_Structs(t *testing.T) {
	type user struct {
		ID       int64
		FullName string `db:"name"`
		Ignored  string `db:"-"`
	}

	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("SELECT * FROM users ORDER BY id DESC").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "extra"}).
			AddRow(int64(2), "bob", "x").
			AddRow(int64(1), "ann", "y"))

	var users []user

	res, err := b.Table("users").OrderBy("id", Desc).RunInto(context.Background(), &users)

	require.NoError(t, err)
	assert.Equal(t, ActionSelect, res.Action)
	assert.Equal(t, []user{{ID: 2, FullName: "bob"}, {ID: 1, FullName: "ann"}}, users)
	assertReset(t, b)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInto_SingleStructNoRows(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("SELECT * FROM users WHERE id = ?").
		ExpectQuery().
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var u struct{ ID int64 }

	_, err := b.Table("users").Where("id", 9).RunInto(context.Background(), &u)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutionFailed)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInto_Count(t *testing.T) {
	b, mock := newMockBuilder(t)

	mock.ExpectPrepare("SELECT COUNT(*) FROM users").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(12)))

	var n int

	res, err := b.Table("users").Count().RunInto(context.Background(), &n)

	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, int64(12), res.Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInto_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder) *Builder
		dest  any
		cause error
	}{
		{
			name:  "delete",
			build: func(b *Builder) *Builder { return b.Table("users").Delete() },
			dest:  &[]Record{},
			cause: errRunIntoAction,
		},
		{
			name:  "nil destination",
			build: func(b *Builder) *Builder { return b.Table("users") },
			dest:  nil,
			cause: errDestNotPointer,
		},
		{
			name:  "non pointer destination",
			build: func(b *Builder) *Builder { return b.Table("users") },
			dest:  []int{},
			cause: errDestNotPointer,
		},
		{
			name:  "select into int",
			build: func(b *Builder) *Builder { return b.Table("users") },
			dest:  new(int),
			cause: errUnsupportedDest,
		},
		{
			name:  "select into string",
			build: func(b *Builder) *Builder { return b.Table("users").Where("id", 1) },
			dest:  new(string),
			cause: errUnsupportedDest,
		},
		{
			name:  "count into string",
			build: func(b *Builder) *Builder { return b.Table("users").Count() },
			dest:  new(string),
			cause: errUnsupportedDest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, mock := newMockBuilder(t)

			_, err := tc.build(b).RunInto(context.Background(), tc.dest)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidStatementState)
			assert.ErrorIs(t, err, tc.cause)
			assertReset(t, b)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRun_Postgres(t *testing.T) {
	b, mock := newMockBuilder(t, WithDialect(DialectPostgres), WithPrefix("app_"))

	mock.ExpectPrepare(`UPDATE app_users SET "name" = $1 WHERE id = $2`).
		ExpectExec().
		WithArgs("ann", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := b.Table("users").Update(Row{Set("name", "ann")}).Where("id", 1).Run(context.Background())

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
