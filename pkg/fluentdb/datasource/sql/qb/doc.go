// Package qb provides a fluent, single-statement SQL builder and executor.
//
// A Builder accumulates a table, an action (SELECT, INSERT, UPDATE, DELETE or COUNT),
// WHERE predicates, ORDER BY columns and an INSERT/UPDATE payload through chained calls.
// ToSQL renders the statement with positional placeholders and returns the bound values
// in placeholder order. Run prepares and executes the statement on the injected
// connection and resets the builder, so one instance can be reused statement after
// statement:
//
//	b := qb.New(db, qb.WithPrefix("app_"))
//
//	res, err := b.Table("users").Where("age", ">", 18).OrderBy("name").Run(ctx)
//	// SELECT * FROM app_users WHERE age > ? ORDER BY name ASC
//
//	res, err = b.Table("users").Insert(qb.Row{qb.Set("name", "ann"), qb.Set("age", 31)}).Run(ctx)
//	// INSERT INTO app_users(`name`,`age`) VALUES (?,?)
//
// MySQL output is the default. Use WithDialect for sqlite and postgres; postgres output
// quotes payload columns with double quotes and numbers placeholders as $1..$n.
//
// A Builder is not safe for concurrent use. Use one per goroutine.
package qb
