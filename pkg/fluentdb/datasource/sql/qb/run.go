package qb

import (
	"context"
	"database/sql"
)

// Record is one SELECT row keyed by column name. Byte values are returned as strings.
type Record map[string]any

// Result is the outcome of Run. Which fields are set depends on Action:
// SELECT fills Columns and Rows, INSERT fills LastInsertID and RowsAffected,
// UPDATE and DELETE fill RowsAffected, COUNT fills Count.
type Result struct {
	Action       Action
	Columns      []string
	Rows         []Record
	LastInsertID int64
	RowsAffected int64
	Count        int64
}

// Run prepares and executes the current statement, then resets the builder whatever the
// outcome.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	defer b.reset()

	return b.run(ctx, nil)
}

// RunInto runs a SELECT or COUNT statement and scans its result into dest. SELECT
// accepts the destinations of ScanRows, COUNT a *int64 or *int. The builder is reset
// whatever the outcome.
func (b *Builder) RunInto(ctx context.Context, dest any) (*Result, error) {
	defer b.reset()

	if b.err == nil && b.action != ActionSelect && b.action != ActionCount {
		return nil, invalidState(errRunIntoAction, "got %s", b.action)
	}

	if err := checkDest(b.action, dest); err != nil {
		return nil, err
	}

	return b.run(ctx, dest)
}

func (b *Builder) run(ctx context.Context, dest any) (*Result, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, err
	}

	if b.conn == nil {
		return nil, &StatementError{Kind: ErrConnectionUnavailable, Action: b.action, Query: query}
	}

	stmt, err := b.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, b.failure(ErrPreparationFailed, query, err)
	}

	defer stmt.Close()

	res := &Result{Action: b.action}

	switch b.action {
	case ActionSelect:
		err = b.query(ctx, stmt, args, dest, res)
	case ActionCount:
		err = b.count(ctx, stmt, args, dest, res)
	default:
		err = b.exec(ctx, stmt, args, res)
	}

	if err != nil {
		return nil, b.failure(ErrExecutionFailed, query, err)
	}

	return res, nil
}

func (b *Builder) query(ctx context.Context, stmt *sql.Stmt, args []any, dest any, res *Result) error {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return err
	}

	defer rows.Close()

	if dest != nil {
		return ScanRows(rows, dest)
	}

	res.Columns, res.Rows, err = scanRecords(rows)

	return err
}

func (b *Builder) count(ctx context.Context, stmt *sql.Stmt, args []any, dest any, res *Result) error {
	if err := stmt.QueryRowContext(ctx, args...).Scan(&res.Count); err != nil {
		return err
	}

	if dest == nil {
		return nil
	}

	switch d := dest.(type) {
	case *int64:
		*d = res.Count
	case *int:
		*d = int(res.Count)
	}

	return nil
}

func (b *Builder) exec(ctx context.Context, stmt *sql.Stmt, args []any, res *Result) error {
	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return err
	}

	if res.RowsAffected, err = result.RowsAffected(); err != nil {
		b.warnf("%s on %s: rows affected unavailable: %v", b.action, b.table, err)
	}

	if b.action != ActionInsert {
		return nil
	}

	if res.LastInsertID, err = result.LastInsertId(); err != nil {
		b.warnf("%s on %s: last insert id unavailable: %v", b.action, b.table, err)
	}

	return nil
}

func (b *Builder) failure(kind error, query string, err error) error {
	if b.logger != nil {
		b.logger.Errorf("%v: %s: %v", kind, query, err)
	}

	return &StatementError{Kind: kind, Action: b.action, Query: query, Err: err}
}

func (b *Builder) warnf(format string, args ...any) {
	if b.logger != nil {
		b.logger.Warnf(format, args...)
	}
}
