package sqlcrud_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/sqlcrud/pkg/sqlcrud"
)

const createUsersSQL = `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	name TEXT,
	age INTEGER,
	score REAL,
	avatar BLOB
)`

// testDBPath returns a fresh database path inside the test's temp dir.
func testDBPath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "test.db")
}

// openTestDB opens a database with an empty users table selected.
func openTestDB(t *testing.T) *sqlcrud.DB {
	t.Helper()

	return openTestDBAt(t, testDBPath(t))
}

func openTestDBAt(t *testing.T, path string) *sqlcrud.DB {
	t.Helper()

	db, err := sqlcrud.Open(t.Context(), sqlcrud.Config{Path: path, Table: "users"})
	require.NoError(t, err, "open")

	t.Cleanup(func() { _ = db.Close() })

	err = db.Exec(t.Context(), createUsersSQL)
	require.NoError(t, err, "create users table")

	return db
}

func user(name string, age int64) sqlcrud.Record {
	return sqlcrud.Record{}.Set("name", name).Set("age", age)
}

// mustInsert inserts rec into the selected table and returns its id.
func mustInsert(ctx context.Context, t *testing.T, db *sqlcrud.DB, rec sqlcrud.Record) int64 {
	t.Helper()

	id, err := db.Insert(ctx, sqlcrud.Insert{Record: rec})
	require.NoError(t, err, "insert %v", rec)

	return id
}

func mustCount(ctx context.Context, t *testing.T, db *sqlcrud.DB) int64 {
	t.Helper()

	n, err := db.Count(ctx, "")
	require.NoError(t, err, "count")

	return n
}

// mustGetUser loads the users row with the given id; fails if missing.
func mustGetUser(ctx context.Context, t *testing.T, db *sqlcrud.DB, id int64) *sqlcrud.Row {
	t.Helper()

	row, err := db.GetRow(ctx, "SELECT * FROM users WHERE id = ?", id)
	require.NoError(t, err, "get row %d", id)
	require.NotNil(t, row, "row %d not found", id)

	return row
}
