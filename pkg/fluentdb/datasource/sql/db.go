// Package sql provides functionalities to interact with SQL databases using the database/sql package. This package
// includes a wrapper around sql.DB and sql.Tx to provide additional features such as query logging, metrics recording,
// tracing and fluent statement building through the qb package.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sllt/fluentdb/pkg/fluentdb/datasource"
	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/qb"
	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/schema"
	"github.com/sllt/fluentdb/pkg/fluentdb/logging"
)

// DB is a wrapper around sql.DB which provides some more features.
type DB struct {
	// contains unexported or private fields
	*sql.DB
	logger  datasource.Logger
	config  *DBConfig
	metrics Metrics
	tracer  trace.Tracer
	dialect qb.Dialect
}

type Log struct {
	Type     string `json:"type"`
	Query    string `json:"query"`
	Duration int64  `json:"duration"`
	Args     []any  `json:"args,omitempty"`
	TxID     string `json:"tx_id,omitempty"`
}

var (
	errSelectDataNotPointer = errors.New("data is not a pointer")
	errNilConfig            = errors.New("database config is nil")
)

var whitespace = regexp.MustCompile(`\s+`)

func (l *Log) PrettyPrint(writer io.Writer) {
	txID := ""
	if l.TxID != "" {
		txID = " \u001B[38;5;8m[" + l.TxID[:min(8, len(l.TxID))] + "]\u001B[0m"
	}

	fmt.Fprintf(writer, "\u001B[38;5;8m%-32s \u001B[38;5;24m%-6s\u001B[0m %8d\u001B[38;5;8mµs\u001B[0m%s %s\n",
		l.Type, "SQL", l.Duration, txID, clean(l.Query))
}

func clean(query string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(query, " "))
}

// NewDB wraps an open pool. cfg.Dialect selects the dialect of the builders it hands out.
func NewDB(db *sql.DB, cfg *DBConfig, logger datasource.Logger, metrics Metrics) (*DB, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	dialect, err := qb.ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, config: cfg, logger: logger, metrics: metrics, dialect: dialect}, nil
}

func sendStats(ctx context.Context, logger datasource.Logger, metrics Metrics, config *DBConfig,
	start time.Time, queryType, txID, query string, args ...any) {
	duration := time.Since(start)

	if logger != nil {
		entry := &Log{
			Type:     queryType,
			Query:    query,
			Duration: duration.Microseconds(),
			Args:     args,
			TxID:     txID,
		}

		if l, ok := logger.(logging.Logger); ok {
			logging.NewContextLogger(ctx, l).Debug(entry)
		} else {
			logger.Debug(entry)
		}
	}

	if metrics != nil {
		metrics.RecordHistogram(ctx, statsHistogram, float64(duration.Microseconds())/1e3,
			"hostname", config.HostName, "database", config.Database, "type", getOperationType(query))
	}
}

func (d *DB) sendOperationStats(ctx context.Context, start time.Time, queryType, query string, args ...any) {
	sendStats(ctx, d.logger, d.metrics, d.config, start, queryType, "", query, args...)
}

func getOperationType(query string) string {
	query = strings.TrimSpace(query)
	word, _, _ := strings.Cut(query, " ")

	return strings.ToUpper(word)
}

// UseTracer adds a span around every statement preparation.
func (d *DB) UseTracer(tracer trace.Tracer) {
	d.tracer = tracer
}

func (d *DB) Dialect() string {
	return string(d.dialect)
}

// Prefix returns the configured table prefix.
func (d *DB) Prefix() string {
	return d.config.Prefix
}

// Builder returns a statement builder running on d with the configured dialect, table
// prefix and logger.
func (d *DB) Builder() *qb.Builder {
	return qb.New(d, qb.WithDialect(d.dialect), qb.WithPrefix(d.config.Prefix), qb.WithLogger(d.logger))
}

// Tables lists the tables of the connected database.
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	return schema.New(d, d.dialect, d.config.Prefix).Tables(ctx)
}

// Columns lists the columns of the prefixed table, in ordinal order.
func (d *DB) Columns(ctx context.Context, table string) ([]string, error) {
	return schema.New(d, d.dialect, d.config.Prefix).Columns(ctx, table)
}

func (d *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return d.QueryContext(context.Background(), query, args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer d.sendOperationStats(ctx, time.Now(), "QueryContext", query, args...)
	return d.DB.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRow(query string, args ...any) *sql.Row {
	return d.QueryRowContext(context.Background(), query, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer d.sendOperationStats(ctx, time.Now(), "QueryRowContext", query, args...)
	return d.DB.QueryRowContext(ctx, query, args...)
}

func (d *DB) Exec(query string, args ...any) (sql.Result, error) {
	return d.ExecContext(context.Background(), query, args...)
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer d.sendOperationStats(ctx, time.Now(), "ExecContext", query, args...)
	return d.DB.ExecContext(ctx, query, args...)
}

func (d *DB) Prepare(query string) (*sql.Stmt, error) {
	return d.PrepareContext(context.Background(), query)
}

// PrepareContext prepares query on the pool. Statements built by Builder go through it.
func (d *DB) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	if d.tracer != nil {
		var span trace.Span

		ctx, span = d.tracer.Start(ctx, "sql-prepare", trace.WithAttributes(
			attribute.String("db.system", d.Dialect()),
			attribute.String("db.statement", clean(query)),
		))
		defer span.End()
	}

	defer d.sendOperationStats(ctx, time.Now(), "PrepareContext", query)

	return d.DB.PrepareContext(ctx, query)
}

func (d *DB) Begin() (*Tx, error) {
	return d.BeginTx(context.Background(), nil)
}

// BeginTx starts a transaction. Its statements are logged with a transaction id.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	start := time.Now()

	tx, err := d.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	t := &Tx{Tx: tx, id: uuid.NewString(), db: d}
	t.sendOperationStats(ctx, start, "TxBegin", "BEGIN")

	return t, nil
}

func (d *DB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}

	return nil
}

// Tx is a wrapper around sql.Tx that logs like DB.
type Tx struct {
	*sql.Tx
	id string
	db *DB
}

// ID returns the transaction id found in its log lines.
func (t *Tx) ID() string {
	return t.id
}

func (t *Tx) sendOperationStats(ctx context.Context, start time.Time, queryType, query string, args ...any) {
	sendStats(ctx, t.db.logger, t.db.metrics, t.db.config, start, queryType, t.id, query, args...)
}

// Builder returns a statement builder running inside the transaction.
func (t *Tx) Builder() *qb.Builder {
	return qb.New(t, qb.WithDialect(t.db.dialect), qb.WithPrefix(t.db.config.Prefix), qb.WithLogger(t.db.logger))
}

func (t *Tx) Query(query string, args ...any) (*sql.Rows, error) {
	return t.QueryContext(context.Background(), query, args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.sendOperationStats(ctx, time.Now(), "TxQueryContext", query, args...)
	return t.Tx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRow(query string, args ...any) *sql.Row {
	return t.QueryRowContext(context.Background(), query, args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.sendOperationStats(ctx, time.Now(), "TxQueryRowContext", query, args...)
	return t.Tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.sendOperationStats(ctx, time.Now(), "TxExecContext", query, args...)
	return t.Tx.ExecContext(ctx, query, args...)
}

func (t *Tx) Prepare(query string) (*sql.Stmt, error) {
	return t.PrepareContext(context.Background(), query)
}

func (t *Tx) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	defer t.sendOperationStats(ctx, time.Now(), "TxPrepareContext", query)
	return t.Tx.PrepareContext(ctx, query)
}

func (t *Tx) Commit() error {
	defer t.sendOperationStats(context.Background(), time.Now(), "TxCommit", "COMMIT")
	return t.Tx.Commit()
}

func (t *Tx) Rollback() error {
	defer t.sendOperationStats(context.Background(), time.Now(), "TxRollback", "ROLLBACK")
	return t.Tx.Rollback()
}

// Select runs a query with args and binds the result of the query to data.
// data should be a pointer to a slice or struct.
//
// Example:
//
//  1. Get multiple rows with only one column
//     ids := make([]int, 0)
//     err := db.Select(ctx, &ids, "select id from users")
//
//  2. Get a single object from database
//     type user struct {
//     Name  string
//     ID    int
//     Image string
//     }
//     u := user{}
//     err := db.Select(ctx, &u, "select * from users where id=?", 1)
//
//  3. Get array of objects from multiple rows
//     type user struct {
//     Name  string
//     ID    int
//     Image string `db:"image_url"`
//     }
//     users := []user{}
//     err := db.Select(ctx, &users, "select * from users")
func (d *DB) Select(ctx context.Context, data any, query string, args ...any) error {
	return selectData(ctx, d.logger, d.QueryContext, data, query, args...)
}

// Select executes query using the active transaction and binds rows into data.
func (t *Tx) Select(ctx context.Context, data any, query string, args ...any) error {
	return selectData(ctx, t.db.logger, t.QueryContext, data, query, args...)
}

type queryFunc func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func selectData(ctx context.Context, logger datasource.Logger, queryContext queryFunc, data any, query string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Destination must be settable so callers can read scanned results.
	rvo := reflect.ValueOf(data)
	if !rvo.IsValid() || rvo.Kind() != reflect.Ptr || rvo.IsNil() {
		if logger != nil {
			logger.Error("we did not get a pointer. data is not settable.")
		}

		return errSelectDataNotPointer
	}

	rows, err := queryContext(ctx, query, args...)
	if err != nil {
		if logger != nil {
			logger.Errorf("error running query: %v", err)
		}

		return err
	}

	defer rows.Close()

	if err := qb.ScanRows(rows, data); err != nil {
		if logger != nil && !errors.Is(err, sql.ErrNoRows) {
			logger.Errorf("error parsing rows : %v", err)
		}

		return err
	}

	return nil
}
