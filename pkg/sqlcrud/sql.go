package sqlcrud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const (
	driverName = "sqlite3"

	// defaultBusyTimeout is the time SQLite waits when the database is locked.
	// After this, operations return SQLITE_BUSY.
	defaultBusyTimeout = 5 * time.Second
)

// openSqlite opens the database file on a single connection and applies the
// connection pragmas.
func openSqlite(ctx context.Context, path string, busyTimeout time.Duration) (*sqlx.DB, error) {
	if path == "" {
		return nil, ErrNoPath
	}

	db, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	// One connection: pending transactions and open cursors are tied to it,
	// and per-connection pragmas must apply to every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	err = db.PingContext(ctx)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			closeErr = fmt.Errorf("sqlite: close: %w", closeErr)
		}

		return nil, errors.Join(fmt.Errorf("sqlite: ping: %w", err), closeErr)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA foreign_keys = ON;
	`, busyTimeout.Milliseconds()))
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			closeErr = fmt.Errorf("sqlite: close: %w", closeErr)
		}

		return nil, errors.Join(fmt.Errorf("sqlite: apply pragmas: %w", err), closeErr)
	}

	return db, nil
}
