// Package sqlcrud is a thin CRUD layer over a single embedded SQLite database.
//
// It turns table names, ordered column/value lists and equality-only WHERE
// clauses into parameterized statements and runs them on one connection:
//
//	db, err := sqlcrud.Open(ctx, sqlcrud.Config{Path: "app.db", Table: "users"})
//	if err != nil { ... }
//	defer db.Close()
//
//	id, err := db.Insert(ctx, sqlcrud.Insert{
//	    Record: sqlcrud.Record{}.Set("name", "Ana").Set("age", 30),
//	})
//
//	row, err := db.GetRow(ctx, "SELECT * FROM users WHERE id = ?", id)
//	name, _ := row.String("name")
//
// # Statements
//
// Values are always bound through placeholders. Table and column names are
// interpolated into the SQL text as given; never pass untrusted identifiers.
// Read values are decoded by the driver: text in DATE, DATETIME and TIMESTAMP
// columns comes back as time.Time (see [Row]).
//
// # Commit model
//
// Every helper commits on its own, except the NoCommit variants
// ([DB.ExecNoCommit], [DB.InsertNoCommit], [DB.UpdateNoCommit]) which open a
// pending transaction and leave it open. The next committing helper (or
// [DB.Commit]) commits all pending work; [DB.Rollback] discards it and
// [DB.Close] rolls it back.
//
// # Cursors
//
// A [DB] owns exactly one connection and supports one open cursor. While a
// [Rows] returned by [DB.GetResults] is open, every other statement on the same
// [DB] fails with [ErrCursorOpen]. Drain or close the [Rows] first.
//
// A [DB] is not meant for concurrent use. Calls are serialized internally but
// the single-cursor rule above still applies across goroutines.
package sqlcrud
