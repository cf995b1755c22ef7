package sqlcrud

import (
	"fmt"
	"iter"

	"github.com/jmoiron/sqlx"
)

// Rows is a forward-only, single-pass iterator over an open cursor.
//
// While a Rows is open, no other statement may run on the [DB] that returned
// it. The cursor is released when [Rows.Next] returns false, when
// [Rows.Close] is called, or when the range loop over [Rows.All] ends.
//
//	rows, err := db.GetResults(ctx, "SELECT * FROM users")
//	if err != nil { ... }
//	defer rows.Close()
//
//	for rows.Next() {
//	    row := rows.Row()
//	    ...
//	}
//	if err := rows.Err(); err != nil { ... }
type Rows struct {
	db      *DB
	rows    *sqlx.Rows
	query   string
	columns []string
	current *Row
	err     error
	closed  bool
}

// Columns returns the result column names.
func (r *Rows) Columns() []string {
	return r.columns
}

// Next advances to the next row. It returns false when the rows are
// exhausted or an error occurred; the cursor is released in both cases.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}

	if !r.rows.Next() {
		err := r.rows.Err()
		if err != nil {
			r.err = dbError(err, "get results", "", r.query)
		}

		_ = r.Close()

		return false
	}

	values, err := r.rows.SliceScan()
	if err != nil {
		r.err = dbError(fmt.Errorf("scan: %w", err), "get results", "", r.query)
		_ = r.Close()

		return false
	}

	r.current = newRow(r.columns, values)

	return true
}

// Row returns the row loaded by the last successful [Rows.Next].
func (r *Rows) Row() *Row {
	return r.current
}

// Err returns the error, if any, that ended iteration.
func (r *Rows) Err() error {
	return r.err
}

// Close releases the cursor. Idempotent.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.closeLocked()
}

// closeLocked releases the cursor; the caller holds db.mu.
func (r *Rows) closeLocked() error {
	if r.closed {
		return nil
	}

	r.closed = true

	if r.db.cursor == r {
		r.db.cursor = nil
	}

	err := r.rows.Close()
	if err != nil {
		return dbError(err, "get results", "", r.query)
	}

	return nil
}

// All returns an iterator over the remaining rows. Iteration stops at the
// first error, which is yielded with a nil row. The cursor is closed when the
// loop ends, including on break.
//
//	for row, err := range rows.All() {
//	    if err != nil { ... }
//	}
func (r *Rows) All() iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		defer func() { _ = r.Close() }()

		for r.Next() {
			if !yield(r.current, nil) {
				return
			}
		}

		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

// Collect drains the rows into a slice and closes the cursor.
func (r *Rows) Collect() ([]*Row, error) {
	var out []*Row

	for row, err := range r.All() {
		if err != nil {
			return out, err
		}

		out = append(out, row)
	}

	return out, nil
}
