package qb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sllt/fluentdb/pkg/fluentdb/datasource"
)

// Preparer is the connection a Builder runs statements on. *sql.DB, *sql.Tx, *sql.Conn
// and the datasource/sql wrappers satisfy it.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Action is the statement kind a Builder renders.
type Action uint8

const (
	ActionNone Action = iota
	ActionSelect
	ActionInsert
	ActionUpdate
	ActionDelete
	ActionCount
)

func (a Action) String() string {
	switch a {
	case ActionSelect:
		return "SELECT"
	case ActionInsert:
		return "INSERT"
	case ActionUpdate:
		return "UPDATE"
	case ActionDelete:
		return "DELETE"
	case ActionCount:
		return "COUNT"
	default:
		return "NONE"
	}
}

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type predicate struct {
	column   string
	operator string
	// placeholders is the number of bound values, list marks a parenthesized list.
	placeholders int
	list         bool
}

type ordering struct {
	column string
	dir    Direction
}

// Builder accumulates one statement at a time. See the package documentation.
type Builder struct {
	conn    Preparer
	dialect Dialect
	prefix  string
	logger  datasource.Logger

	table      string
	action     Action
	predicates []predicate
	bound      []any
	orderings  []ordering
	payload    Row
	err        error
}

// Option configures a Builder.
type Option func(*Builder)

// WithPrefix sets the prefix prepended verbatim to every table name.
func WithPrefix(prefix string) Option {
	return func(b *Builder) {
		b.prefix = prefix
	}
}

// WithDialect sets the output dialect. The default is MySQL.
func WithDialect(d Dialect) Option {
	return func(b *Builder) {
		b.dialect = d
	}
}

// WithLogger sets the logger used to report failed and degraded executions.
func WithLogger(logger datasource.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New returns a Builder running statements on conn. conn may be nil for a builder that
// only renders SQL; running it fails with ErrConnectionUnavailable.
func New(conn Preparer, opts ...Option) *Builder {
	b := &Builder{conn: conn, dialect: DialectMySQL}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Dialect returns the dialect the builder renders for.
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

// Prefix returns the table prefix.
func (b *Builder) Prefix() string {
	return b.prefix
}

// Table targets prefix+name and selects by default.
func (b *Builder) Table(name string) *Builder {
	if b.err != nil {
		return b
	}

	if err := checkIdentifier(name); err != nil {
		return b.fail(err)
	}

	b.table = b.prefix + name
	b.action = ActionSelect

	return b
}

func (b *Builder) Select() *Builder {
	return b.setAction(ActionSelect)
}

// Count makes the statement SELECT COUNT(*).
func (b *Builder) Count() *Builder {
	return b.setAction(ActionCount)
}

func (b *Builder) Delete() *Builder {
	return b.setAction(ActionDelete)
}

// Insert makes the statement an INSERT of payload. A column given twice keeps its first
// position and its last value.
func (b *Builder) Insert(payload Row) *Builder {
	return b.setPayload(ActionInsert, payload)
}

// Update makes the statement an UPDATE setting payload.
func (b *Builder) Update(payload Row) *Builder {
	return b.setPayload(ActionUpdate, payload)
}

// InsertMap is Insert with the keys of m in lexical order.
func (b *Builder) InsertMap(m map[string]any) *Builder {
	return b.setPayload(ActionInsert, RowFromMap(m))
}

// UpdateMap is Update with the keys of m in lexical order.
func (b *Builder) UpdateMap(m map[string]any) *Builder {
	return b.setPayload(ActionUpdate, RowFromMap(m))
}

// InsertStruct is Insert with the payload taken from a struct, see RowFromStruct.
func (b *Builder) InsertStruct(v any) *Builder {
	return b.setStruct(ActionInsert, v)
}

// UpdateStruct is Update with the payload taken from a struct, see RowFromStruct.
func (b *Builder) UpdateStruct(v any) *Builder {
	return b.setStruct(ActionUpdate, v)
}

// Where adds a predicate joined to the previous ones with AND.
//
//	Where("id", 5)                        // id = ?
//	Where("age", ">=", 18)                // age >= ?
//	Where("role", "in", []string{"a","b"}) // role IN (?,?)
//
// A slice or array value (other than bytes) is a list and needs IN or NOT IN.
func (b *Builder) Where(column string, args ...any) *Builder {
	if b.err != nil {
		return b
	}

	var (
		op    string
		value any
	)

	switch len(args) {
	case 1:
		op, value = "=", args[0]
	case 2:
		s, ok := args[0].(string)
		if !ok {
			return b.fail(invalidState(errOperatorType, "got %T", args[0]))
		}

		op, value = s, args[1]
	default:
		return b.fail(invalidState(errWhereArgs, "got %d arguments for %q", len(args), column))
	}

	if err := checkIdentifier(column); err != nil {
		return b.fail(err)
	}

	values, list := flatten(value)

	op, err := checkOperator(op, list)
	if err != nil {
		return b.fail(err)
	}

	if list && len(values) == 0 {
		return b.fail(invalidState(ErrEmptyList, "%s %s", column, op))
	}

	b.predicates = append(b.predicates, predicate{
		column:       column,
		operator:     op,
		placeholders: len(values),
		list:         list,
	})
	b.bound = append(b.bound, values...)

	return b
}

// OrderBy orders by column, ascending unless a direction is given. Ordering by the same
// column again changes its direction and keeps its position. Only MySQL accepts orderings
// on UPDATE and DELETE; ToSQL rejects them for the other dialects.
func (b *Builder) OrderBy(column string, dir ...Direction) *Builder {
	if b.err != nil {
		return b
	}

	if err := checkIdentifier(column); err != nil {
		return b.fail(err)
	}

	d := Asc

	switch len(dir) {
	case 0:
	case 1:
		d = Direction(strings.ToUpper(strings.TrimSpace(string(dir[0]))))
		if d != Asc && d != Desc {
			return b.fail(invalidState(ErrInvalidDirection, "%q", dir[0]))
		}
	default:
		return b.fail(invalidState(ErrInvalidDirection, "got %d directions for %q", len(dir), column))
	}

	for i := range b.orderings {
		if b.orderings[i].column == column {
			b.orderings[i].dir = d
			return b
		}
	}

	b.orderings = append(b.orderings, ordering{column: column, dir: d})

	return b
}

// Err returns the first error raised while building the current statement.
func (b *Builder) Err() error {
	return b.err
}

// Reset discards the current statement. Run and RunInto reset on their own.
func (b *Builder) Reset() *Builder {
	b.reset()
	return b
}

func (b *Builder) setAction(a Action) *Builder {
	if b.err != nil {
		return b
	}

	b.action = a

	return b
}

func (b *Builder) setPayload(a Action, payload Row) *Builder {
	if b.err != nil {
		return b
	}

	for _, f := range payload {
		if err := checkIdentifier(f.Column); err != nil {
			return b.fail(err)
		}
	}

	b.action = a
	b.payload = payload.dedupe()

	return b
}

func (b *Builder) setStruct(a Action, v any) *Builder {
	if b.err != nil {
		return b
	}

	row, err := RowFromStruct(v)
	if err != nil {
		return b.fail(invalidState(err, "got %T", v))
	}

	return b.setPayload(a, row)
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}

	return b
}

func (b *Builder) reset() {
	b.table = ""
	b.action = ActionNone
	b.predicates = nil
	b.bound = nil
	b.orderings = nil
	b.payload = nil
	b.err = nil
}
