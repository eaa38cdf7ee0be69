package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/qb"
)

func TestParseWhere(t *testing.T) {
	tests := []struct {
		in   string
		want condition
	}{
		{"id:7", condition{column: "id", operator: "=", value: "7"}},
		{"age:>=:21", condition{column: "age", operator: ">=", value: "21"}},
		{"name:like:a%", condition{column: "name", operator: "like", value: "a%"}},
		{"url:=:http://x", condition{column: "url", operator: "=", value: "http://x"}},
		{"tag:in:a|b|c", condition{column: "tag", operator: "in", value: []string{"a", "b", "c"}}},
		{"tag:not  in:a", condition{column: "tag", operator: "not  in", value: []string{"a"}}},
		{"note:", condition{column: "note", operator: "=", value: ""}},
	}

	for _, tc := range tests {
		got, err := parseWhere(tc.in)

		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"id", ":7", "id::7", ""} {
		_, err := parseWhere(bad)
		require.ErrorIs(t, err, errWhereFormat, bad)
	}
}

func TestParseOrder(t *testing.T) {
	column, dir, err := parseOrder("name")
	require.NoError(t, err)
	assert.Equal(t, "name", column)
	assert.Equal(t, qb.Asc, dir)

	column, dir, err = parseOrder("created_at:desc")
	require.NoError(t, err)
	assert.Equal(t, "created_at", column)
	assert.Equal(t, qb.Direction("desc"), dir)

	for _, bad := range []string{"", ":desc", "name:"} {
		_, _, err := parseOrder(bad)
		require.ErrorIs(t, err, errOrderFormat, bad)
	}
}

func TestParseSets(t *testing.T) {
	payload, err := parseSets([]string{"name=ann", "note=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ann", "note": "a=b", "empty": ""}, payload)

	_, err = parseSets([]string{"name"})
	require.ErrorIs(t, err, errSetFormat)

	_, err = parseSets([]string{"=ann"})
	require.ErrorIs(t, err, errSetFormat)
}

func TestStatementApply(t *testing.T) {
	tests := []struct {
		desc  string
		st    statement
		query string
		args  []any
	}{
		{
			desc:  "select",
			st:    statement{table: "users", wheres: []string{"age:>:20", "tag:in:a|b"}, orders: []string{"name:desc", "id"}},
			query: "SELECT * FROM app_users WHERE age > ? AND tag IN (?,?) ORDER BY name DESC, id ASC",
			args:  []any{"20", "a", "b"},
		},
		{
			desc:  "count",
			st:    statement{table: "users", action: "COUNT", wheres: []string{"id:1"}},
			query: "SELECT COUNT(*) FROM app_users WHERE id = ?",
			args:  []any{"1"},
		},
		{
			desc:  "insert",
			st:    statement{table: "users", action: "insert", sets: []string{"name=ann", "age=31"}},
			query: "INSERT INTO app_users(`age`,`name`) VALUES (?,?)",
			args:  []any{"31", "ann"},
		},
		{
			desc:  "update",
			st:    statement{table: "users", action: "update", sets: []string{"name=bob"}, wheres: []string{"id:2"}},
			query: "UPDATE app_users SET `name` = ? WHERE id = ?",
			args:  []any{"bob", "2"},
		},
		{
			desc:  "delete",
			st:    statement{table: "users", action: "delete", wheres: []string{"id:<>:3"}},
			query: "DELETE FROM app_users WHERE id <> ?",
			args:  []any{"3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			b, err := tc.st.apply(qb.New(nil, qb.WithPrefix("app_")))
			require.NoError(t, err)

			query, args, err := b.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.query, query)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestStatementApply_Errors(t *testing.T) {
	_, err := statement{table: "users", action: "merge"}.apply(qb.New(nil))
	require.Error(t, err)

	_, err = statement{table: "users", wheres: []string{"id"}}.apply(qb.New(nil))
	require.ErrorIs(t, err, errWhereFormat)

	_, err = statement{table: "users", action: "insert", sets: []string{"bad"}}.apply(qb.New(nil))
	require.ErrorIs(t, err, errSetFormat)

	b, err := statement{table: "users", wheres: []string{"id:between:1"}}.apply(qb.New(nil))
	require.NoError(t, err)

	_, _, err = b.ToSQL()
	require.ErrorIs(t, err, qb.ErrUnsupportedOperator)
}
