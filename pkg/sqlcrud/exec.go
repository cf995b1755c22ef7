package sqlcrud

import (
	"context"
	"errors"
	"fmt"
)

// Insert is the input for [DB.Insert].
type Insert struct {
	// Table overrides and replaces the held table context. Optional.
	Table string

	// Record holds the columns to insert. Required.
	Record Record
}

// Update is the input for [DB.Update].
type Update struct {
	// Table overrides and replaces the held table context. Optional.
	Table string

	// Record holds the columns to set. Required.
	Record Record

	// Where selects the rows to update. Required unless AllRows is set.
	Where Where

	// AllRows permits an empty Where, updating every row in the table.
	AllRows bool
}

// Delete is the input for [DB.Delete].
type Delete struct {
	// Table overrides and replaces the held table context. Optional.
	Table string

	// Where selects the rows to delete. Required unless AllRows is set.
	Where Where

	// AllRows permits an empty Where, deleting every row in the table.
	AllRows bool
}

// Exec runs an arbitrary statement (CREATE TABLE, DROP TABLE, ...) and commits.
func (db *DB) Exec(ctx context.Context, query string, args ...any) error {
	return db.rawExec(ctx, "exec", query, args, true)
}

// ExecNoCommit runs an arbitrary statement inside the pending transaction
// without committing. A later committing operation or [DB.Commit] commits it.
func (db *DB) ExecNoCommit(ctx context.Context, query string, args ...any) error {
	return db.rawExec(ctx, "exec", query, args, false)
}

func (db *DB) rawExec(ctx context.Context, op, query string, args []any, commit bool) error {
	if ctx == nil {
		return fmt.Errorf("%s: context is nil", op)
	}

	if query == "" {
		return configError(op, "query", errors.New("query is empty"))
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return err
	}

	_, err := db.execLocked(ctx, op, "", Statement{SQL: query, Args: args}, commit)

	return err
}

// Insert inserts one row and commits. Returns the new row's rowid.
//
// Errors from SQLite (missing table, unknown column, constraint violation)
// are returned as [DatabaseError]; nothing is validated beyond the record
// shape before submission.
func (db *DB) Insert(ctx context.Context, in Insert) (int64, error) {
	return db.insert(ctx, in, true)
}

// InsertNoCommit is [DB.Insert] without the commit.
func (db *DB) InsertNoCommit(ctx context.Context, in Insert) (int64, error) {
	return db.insert(ctx, in, false)
}

func (db *DB) insert(ctx context.Context, in Insert, commit bool) (int64, error) {
	const op = "insert"

	if ctx == nil {
		return 0, errors.New("insert: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return 0, err
	}

	table := db.resolveTableLocked(in.Table)

	stmt, err := BuildInsert(table, in.Record)
	if err != nil {
		return 0, err
	}

	res, err := db.execLocked(ctx, op, table, stmt, commit)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbError(fmt.Errorf("last insert id: %w", err), op, table, stmt.SQL)
	}

	return id, nil
}

// Update updates the rows matching in.Where and commits.
func (db *DB) Update(ctx context.Context, in Update) error {
	return db.update(ctx, in, true)
}

// UpdateNoCommit is [DB.Update] without the commit.
func (db *DB) UpdateNoCommit(ctx context.Context, in Update) error {
	return db.update(ctx, in, false)
}

func (db *DB) update(ctx context.Context, in Update, commit bool) error {
	const op = "update"

	if ctx == nil {
		return errors.New("update: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return err
	}

	table := db.resolveTableLocked(in.Table)

	stmt, err := BuildUpdate(table, in.Record, in.Where, in.AllRows)
	if err != nil {
		return err
	}

	_, err = db.execLocked(ctx, op, table, stmt, commit)

	return err
}

// Delete deletes the rows matching in.Where and commits.
func (db *DB) Delete(ctx context.Context, in Delete) error {
	const op = "delete"

	if ctx == nil {
		return errors.New("delete: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return err
	}

	table := db.resolveTableLocked(in.Table)

	stmt, err := BuildDelete(table, in.Where, in.AllRows)
	if err != nil {
		return err
	}

	_, err = db.execLocked(ctx, op, table, stmt, true)

	return err
}

// Count returns the number of rows in table, or in the held table context
// if table is empty. A non-empty table replaces the held context.
func (db *DB) Count(ctx context.Context, table string) (int64, error) {
	const op = "count"

	if ctx == nil {
		return 0, errors.New("count: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return 0, err
	}

	table = db.resolveTableLocked(table)

	stmt, err := BuildCount(table)
	if err != nil {
		return 0, err
	}

	db.log.Debug().Str("op", op).Str("table", table).Str("sql", stmt.SQL).Msg("query")

	var n int64

	err = db.ext().QueryRowxContext(ctx, stmt.SQL).Scan(&n)
	if err != nil {
		return 0, dbError(err, op, table, stmt.SQL)
	}

	return n, nil
}
