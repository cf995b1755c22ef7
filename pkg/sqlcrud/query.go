package sqlcrud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GetRow runs a read query and returns its first row, or nil if the query
// returned no rows.
//
//	row, err := db.GetRow(ctx, "SELECT * FROM users WHERE id = ?", id)
func (db *DB) GetRow(ctx context.Context, query string, args ...any) (*Row, error) {
	const op = "get row"

	if ctx == nil {
		return nil, errors.New("get row: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return nil, err
	}

	db.log.Debug().Str("op", op).Str("sql", query).Int("args", len(args)).Msg("query")

	rows, err := db.ext().QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, op, "", query)
	}

	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		err = rows.Err()
		if err != nil {
			return nil, dbError(err, op, "", query)
		}

		return nil, nil
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, dbError(fmt.Errorf("columns: %w", err), op, "", query)
	}

	values, err := rows.SliceScan()
	if err != nil {
		return nil, dbError(fmt.Errorf("scan: %w", err), op, "", query)
	}

	return newRow(columns, values), nil
}

// GetResults runs a read query and returns a lazy [Rows] over its result.
//
// The returned Rows holds the DB's only cursor: until it is exhausted or
// closed every other statement on db fails with [ErrCursorOpen].
func (db *DB) GetResults(ctx context.Context, query string, args ...any) (*Rows, error) {
	const op = "get results"

	if ctx == nil {
		return nil, errors.New("get results: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return nil, err
	}

	db.log.Debug().Str("op", op).Str("sql", query).Int("args", len(args)).Msg("query")

	rows, err := db.ext().QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, op, "", query)
	}

	columns, err := rows.Columns()
	if err != nil {
		closeErr := rows.Close()

		return nil, dbError(errors.Join(fmt.Errorf("columns: %w", err), closeErr), op, "", query)
	}

	r := &Rows{
		db:      db,
		rows:    rows,
		query:   query,
		columns: columns,
	}
	db.cursor = r

	return r, nil
}

// ScanOne runs a read query and scans its first row into dest, a pointer to
// a struct (columns matched by `db` tag or lowercased field name) or to a
// scalar. Returns [ErrNotFound] if the query returned no rows.
func (db *DB) ScanOne(ctx context.Context, dest any, query string, args ...any) error {
	const op = "scan one"

	if ctx == nil {
		return errors.New("scan one: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return err
	}

	db.log.Debug().Str("op", op).Str("sql", query).Int("args", len(args)).Msg("query")

	err := sqlx.GetContext(ctx, db.ext(), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return dbError(err, op, "", query)
}

// ScanAll runs a read query and scans every row into dest, a pointer to a
// slice of structs or scalars.
func (db *DB) ScanAll(ctx context.Context, dest any, query string, args ...any) error {
	const op = "scan all"

	if ctx == nil {
		return errors.New("scan all: context is nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(op); err != nil {
		return err
	}

	db.log.Debug().Str("op", op).Str("sql", query).Int("args", len(args)).Msg("query")

	return dbError(sqlx.SelectContext(ctx, db.ext(), dest, query, args...), op, "", query)
}
