package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/qb"
)

const listSeparator = "|"

var (
	errWhereFormat = errors.New("where must be column:value or column:operator:value")
	errOrderFormat = errors.New("order must be column or column:direction")
	errSetFormat   = errors.New("set must be column=value")
)

type condition struct {
	column   string
	operator string
	value    any
}

// parseWhere reads column:value or column:operator:value. The values of IN and NOT IN
// are separated by |.
func parseWhere(s string) (condition, error) {
	parts := strings.SplitN(s, ":", 3)

	switch len(parts) {
	case 2:
		if parts[0] == "" {
			return condition{}, fmt.Errorf("%w: %q", errWhereFormat, s)
		}

		return condition{column: parts[0], operator: "=", value: parts[1]}, nil
	case 3:
		if parts[0] == "" || parts[1] == "" {
			return condition{}, fmt.Errorf("%w: %q", errWhereFormat, s)
		}

		c := condition{column: parts[0], operator: parts[1], value: parts[2]}

		switch strings.ToUpper(strings.Join(strings.Fields(parts[1]), " ")) {
		case "IN", "NOT IN":
			c.value = strings.Split(parts[2], listSeparator)
		}

		return c, nil
	default:
		return condition{}, fmt.Errorf("%w: %q", errWhereFormat, s)
	}
}

func parseOrder(s string) (string, qb.Direction, error) {
	column, dir, found := strings.Cut(s, ":")
	if column == "" || (found && dir == "") {
		return "", "", fmt.Errorf("%w: %q", errOrderFormat, s)
	}

	if !found {
		return column, qb.Asc, nil
	}

	return column, qb.Direction(dir), nil
}

func parseSets(sets []string) (map[string]any, error) {
	payload := make(map[string]any, len(sets))

	for _, s := range sets {
		column, value, found := strings.Cut(s, "=")
		if !found || column == "" {
			return nil, fmt.Errorf("%w: %q", errSetFormat, s)
		}

		payload[column] = value
	}

	return payload, nil
}

type statement struct {
	table  string
	action string
	wheres []string
	orders []string
	sets   []string
}

// apply describes st on b. Validation errors surface from ToSQL or Run.
func (st statement) apply(b *qb.Builder) (*qb.Builder, error) {
	action := strings.ToLower(st.action)

	b.Table(st.table)

	switch action {
	case "", "select":
		b.Select()
	case "count":
		b.Count()
	case "delete":
		b.Delete()
	case "insert", "update":
		payload, err := parseSets(st.sets)
		if err != nil {
			return nil, err
		}

		if action == "insert" {
			b.InsertMap(payload)
		} else {
			b.UpdateMap(payload)
		}
	default:
		return nil, fmt.Errorf("unknown action %q", st.action)
	}

	for _, w := range st.wheres {
		c, err := parseWhere(w)
		if err != nil {
			return nil, err
		}

		b.Where(c.column, c.operator, c.value)
	}

	for _, o := range st.orders {
		column, dir, err := parseOrder(o)
		if err != nil {
			return nil, err
		}

		b.OrderBy(column, dir)
	}

	return b, nil
}
