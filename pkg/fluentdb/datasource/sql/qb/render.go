package qb

import (
	"strings"
)

// ToSQL renders the current statement and returns it with its bound values in
// placeholder order. It does not change the builder.
func (b *Builder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	if b.action == ActionNone {
		return "", nil, invalidState(errNoAction, "")
	}

	if b.table == "" {
		return "", nil, invalidState(errNoTable, "%s", b.action)
	}

	var (
		sb   strings.Builder
		args = make([]any, 0, len(b.payload)+len(b.bound))
	)

	switch b.action {
	case ActionSelect:
		sb.WriteString("SELECT * FROM ")
		sb.WriteString(b.table)
	case ActionCount:
		sb.WriteString("SELECT COUNT(*) FROM ")
		sb.WriteString(b.table)
	case ActionDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	case ActionInsert:
		if len(b.payload) == 0 {
			return "", nil, invalidState(errEmptyPayload, "%s %s", b.action, b.table)
		}

		if len(b.predicates) > 0 || len(b.orderings) > 0 {
			return "", nil, invalidState(errInsertClauses, "%s", b.table)
		}

		b.writeInsert(&sb)
		args = append(args, b.payload.Values()...)
	case ActionUpdate:
		if len(b.payload) == 0 {
			return "", nil, invalidState(errEmptyPayload, "%s %s", b.action, b.table)
		}

		b.writeUpdate(&sb)
		args = append(args, b.payload.Values()...)
	}

	if len(b.orderings) > 0 && !b.dialect.ordersWrites() &&
		(b.action == ActionUpdate || b.action == ActionDelete) {
		return "", nil, invalidState(errOrderedWrite, "%s %s (%s)", b.action, b.table, b.dialect)
	}

	b.writeWhere(&sb)
	b.writeOrderBy(&sb)

	args = append(args, b.bound...)

	return b.dialect.rebind(sb.String()), args, nil
}

func (b *Builder) writeInsert(sb *strings.Builder) {
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.table)
	sb.WriteByte('(')

	for i, f := range b.payload {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(b.dialect.Quote(f.Column))
	}

	sb.WriteString(") VALUES (")
	writePlaceholders(sb, len(b.payload))
	sb.WriteByte(')')
}

func (b *Builder) writeUpdate(sb *strings.Builder) {
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")

	for i, f := range b.payload {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(b.dialect.Quote(f.Column))
		sb.WriteString(" = ?")
	}
}

func (b *Builder) writeWhere(sb *strings.Builder) {
	if len(b.predicates) == 0 {
		return
	}

	sb.WriteString(" WHERE ")

	for i, p := range b.predicates {
		if i > 0 {
			sb.WriteString(" AND ")
		}

		sb.WriteString(p.column)
		sb.WriteByte(' ')
		sb.WriteString(b.dialect.operator(p.operator))

		if p.list {
			sb.WriteString(" (")
			writePlaceholders(sb, p.placeholders)
			sb.WriteByte(')')

			continue
		}

		sb.WriteString(" ?")
	}
}

func (b *Builder) writeOrderBy(sb *strings.Builder) {
	if len(b.orderings) == 0 {
		return
	}

	sb.WriteString(" ORDER BY ")

	for i, o := range b.orderings {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(o.column)
		sb.WriteByte(' ')
		sb.WriteString(string(o.dir))
	}
}

func writePlaceholders(sb *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteByte('?')
	}
}
