package sqlcrud

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrClosed indicates an operation was attempted on a closed DB.
	ErrClosed = errors.New("sqlcrud closed")

	// ErrCursorOpen indicates a statement was issued while a [Rows] from
	// [DB.GetResults] is still open on the same DB.
	ErrCursorOpen = errors.New("cursor still open")

	// ErrNotFound indicates a query that must return a row returned none.
	ErrNotFound = errors.New("not found")

	ErrNoPath          = errors.New("path is required")
	ErrNoTable         = errors.New("no table selected")
	ErrEmptyRecord     = errors.New("record is empty")
	ErrEmptyWhere      = errors.New("where is empty (set AllRows to affect every row)")
	ErrEmptyColumn     = errors.New("column name is empty")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// DatabaseError wraps every failure that originates from SQLite or the
// connection itself (malformed SQL, constraint violations, closed handle).
//
// The underlying error message appears first, followed by context:
//
//	insert: no such table: users (table=users)
//
// Use [errors.As] to extract it and [DatabaseError.Code] for the SQLite
// result code:
//
//	var dbErr *sqlcrud.DatabaseError
//	if errors.As(err, &dbErr) && dbErr.Code() == sqlite3.ErrConstraint { ... }
type DatabaseError struct {
	// Op is the operation that failed ("insert", "exec", ...).
	Op string

	// Table is the table the statement targeted, if any.
	Table string

	// Query is the SQL text that was submitted, if any.
	Query string

	// Err is the underlying cause.
	Err error
}

func (e *DatabaseError) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}

	if e.Table != "" {
		b.WriteString(" (table=")
		b.WriteString(e.Table)
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *DatabaseError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Code returns the primary SQLite result code, or 0 if the cause did not
// come from the SQLite engine.
func (e *DatabaseError) Code() sqlite3.ErrNo {
	var sqliteErr sqlite3.Error
	if e == nil || !errors.As(e.Err, &sqliteErr) {
		return 0
	}

	return sqliteErr.Code
}

// ExtendedCode returns the extended SQLite result code, or 0 if the cause did
// not come from the SQLite engine.
func (e *DatabaseError) ExtendedCode() sqlite3.ErrNoExtended {
	var sqliteErr sqlite3.Error
	if e == nil || !errors.As(e.Err, &sqliteErr) {
		return 0
	}

	return sqliteErr.ExtendedCode
}

// ConfigurationError reports invalid or missing input to an operation. It is
// returned before anything is submitted to the database.
//
//	update: where is empty (set AllRows to affect every row)
type ConfigurationError struct {
	// Op is the operation that rejected its input.
	Op string

	// Field names the offending input ("record", "where", "table", ...).
	Field string

	// Err is the underlying cause, usually one of the Err* sentinels.
	Err error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}

	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Op == "" {
		return msg
	}

	return e.Op + ": " + msg
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// dbError attaches operation context at API boundaries. An existing
// *DatabaseError keeps its fields; only missing ones are filled in.
func dbError(err error, op, table, query string) error {
	if err == nil {
		return nil
	}

	existing := &DatabaseError{}
	if errors.As(err, &existing) {
		if existing.Op == "" {
			existing.Op = op
		}

		if existing.Table == "" {
			existing.Table = table
		}

		if existing.Query == "" {
			existing.Query = query
		}

		return existing
	}

	return &DatabaseError{Op: op, Table: table, Query: query, Err: err}
}

func configError(op, field string, err error) error {
	return &ConfigurationError{Op: op, Field: field, Err: err}
}
