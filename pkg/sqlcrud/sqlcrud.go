package sqlcrud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const version = "0.1"

// Version returns the library version.
func Version() string {
	return version
}

// Config holds the settings for [Open].
type Config struct {
	// Path is the SQLite database file. Required. The file is created if it
	// does not exist. ":memory:" opens a private in-memory database.
	Path string

	// Table is the initial table context used by operations that do not name
	// a table. Optional.
	Table string

	// BusyTimeout is how long SQLite waits on a locked database before
	// failing with SQLITE_BUSY. Defaults to 5s.
	BusyTimeout time.Duration

	// Logger receives statement-level debug events. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// DB is one open SQLite connection plus the currently selected table.
type DB struct {
	// mu serializes calls. It is never held while a caller iterates [Rows].
	mu sync.Mutex

	sql    *sqlx.DB
	tx     *sqlx.Tx
	cursor *Rows
	table  string
	path   string
	log    zerolog.Logger
	closed bool
}

// Open opens the database at cfg.Path and returns a ready [DB].
//
// Returns a [ConfigurationError] if cfg.Path is empty and a [DatabaseError]
// if the file cannot be opened.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if ctx == nil {
		return nil, errors.New("open: context is nil")
	}

	if cfg.Path == "" {
		return nil, configError("open", "path", ErrNoPath)
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "sqlcrud").Str("db", cfg.Path).Logger()
	}

	conn, err := openSqlite(ctx, cfg.Path, busyTimeout)
	if err != nil {
		return nil, dbError(err, "open", "", "")
	}

	logger.Info().Str("table", cfg.Table).Msg("database opened")

	return &DB{
		sql:   conn,
		table: cfg.Table,
		path:  cfg.Path,
		log:   logger,
	}, nil
}

// With opens a [DB], passes it to fn and closes it when fn returns, even if
// fn panics. Errors from fn and from closing are joined.
func With(ctx context.Context, cfg Config, fn func(db *DB) error) (err error) {
	if fn == nil {
		return errors.New("with: fn is nil")
	}

	db, err := Open(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := db.Close()
		if closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	return fn(db)
}

// Close rolls back any pending transaction, closes an open cursor and
// releases the connection. Safe on nil, idempotent.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}

	db.closed = true

	var errs []error

	if db.cursor != nil {
		db.cursor.err = dbError(ErrClosed, "get results", "", db.cursor.query)

		err := db.cursor.closeLocked()
		if err != nil {
			errs = append(errs, fmt.Errorf("close cursor: %w", err))
		}
	}

	if db.tx != nil {
		db.log.Warn().Msg("rolling back uncommitted changes on close")

		err := db.rollbackLocked()
		if err != nil {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}

	err := db.sql.Close()
	if err != nil {
		errs = append(errs, fmt.Errorf("sqlite: %w", err))
	}

	db.log.Info().Msg("database closed")

	return dbError(errors.Join(errs...), "close", "", "")
}

// SetTable selects the table used by operations that do not name one.
// Nothing is executed and the table is not checked for existence.
func (db *DB) SetTable(table string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.table = table
}

// Table returns the currently selected table.
func (db *DB) Table() string {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.table
}

// Path returns the database file the DB was opened with.
func (db *DB) Path() string {
	return db.path
}

// InTx reports whether uncommitted changes from a NoCommit operation are pending.
func (db *DB) InTx() bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.tx != nil
}

// Commit commits changes made by NoCommit operations. No-op if nothing is
// pending.
func (db *DB) Commit() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked("commit"); err != nil {
		return err
	}

	if db.tx == nil {
		return nil
	}

	db.log.Debug().Msg("commit")

	return dbError(db.commitLocked(), "commit", "", "")
}

// Rollback discards changes made by NoCommit operations. No-op if nothing is
// pending.
func (db *DB) Rollback() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked("rollback"); err != nil {
		return err
	}

	if db.tx == nil {
		return nil
	}

	db.log.Debug().Msg("rollback")

	return dbError(db.rollbackLocked(), "rollback", "", "")
}

// checkLocked rejects calls on a closed DB or while a cursor is open.
func (db *DB) checkLocked(op string) error {
	if db.closed {
		return dbError(ErrClosed, op, "", "")
	}

	if db.cursor != nil {
		return fmt.Errorf("%s: %w", op, ErrCursorOpen)
	}

	return nil
}

// resolveTableLocked applies a per-call table override to the held context
// and returns the table to use.
func (db *DB) resolveTableLocked(table string) string {
	if table != "" {
		db.table = table
	}

	return db.table
}

// ext returns the pending transaction if there is one, so reads observe
// uncommitted writes and never wait on the single pooled connection.
func (db *DB) ext() sqlx.ExtContext {
	if db.tx != nil {
		return db.tx
	}

	return db.sql
}

// execLocked runs one statement. Without commit it opens (or joins) the
// pending transaction. With commit it runs inside the pending transaction,
// if any, and commits it afterwards.
func (db *DB) execLocked(ctx context.Context, op, table string, stmt Statement, commit bool) (sql.Result, error) {
	started := false

	if !commit && db.tx == nil {
		// The pending transaction outlives this call; do not let ctx
		// cancellation roll it back behind the caller's back.
		tx, err := db.sql.BeginTxx(context.WithoutCancel(ctx), nil)
		if err != nil {
			return nil, dbError(fmt.Errorf("begin: %w", err), op, table, stmt.SQL)
		}

		db.tx = tx
		started = true
	}

	db.log.Debug().
		Str("op", op).
		Str("table", table).
		Str("sql", stmt.SQL).
		Int("args", len(stmt.Args)).
		Bool("commit", commit).
		Msg("exec")

	res, err := db.ext().ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		if started {
			rollbackErr := db.rollbackLocked()
			if rollbackErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rollbackErr))
			}
		}

		return nil, dbError(err, op, table, stmt.SQL)
	}

	if commit && db.tx != nil {
		err = db.commitLocked()
		if err != nil {
			return nil, dbError(fmt.Errorf("commit: %w", err), op, table, stmt.SQL)
		}
	}

	return res, nil
}

func (db *DB) commitLocked() error {
	tx := db.tx
	db.tx = nil

	return tx.Commit()
}

func (db *DB) rollbackLocked() error {
	tx := db.tx
	db.tx = nil

	err := tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}

	return err
}
