package sqlcrud

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Statement is SQL text plus its bound values, in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

// BuildInsert builds
//
//	INSERT INTO <table> (c1,c2,...) VALUES (?,?,...)
//
// with the record values bound in record order.
func BuildInsert(table string, rec Record) (Statement, error) {
	const op = "insert"

	if table == "" {
		return Statement{}, configError(op, "table", ErrNoTable)
	}

	if len(rec) == 0 {
		return Statement{}, configError(op, "record", ErrEmptyRecord)
	}

	if err := validateFields(rec); err != nil {
		return Statement{}, configError(op, "record", err)
	}

	return toStatement(op, sq.Insert(table).Columns(rec.Names()...).Values(rec.Values()...))
}

// BuildUpdate builds
//
//	UPDATE <table> SET c1 = ?, c2 = ? WHERE w1 = ? AND w2 = ?
//
// binding the record values first, then the where values. An empty where is
// rejected with [ErrEmptyWhere] unless allRows is set, in which case the
// statement has no WHERE clause.
func BuildUpdate(table string, rec Record, where Where, allRows bool) (Statement, error) {
	const op = "update"

	if table == "" {
		return Statement{}, configError(op, "table", ErrNoTable)
	}

	if len(rec) == 0 {
		return Statement{}, configError(op, "record", ErrEmptyRecord)
	}

	if err := validateFields(rec); err != nil {
		return Statement{}, configError(op, "record", err)
	}

	if err := checkWhere(where, allRows); err != nil {
		return Statement{}, configError(op, "where", err)
	}

	b := sq.Update(table)

	for _, f := range rec {
		b = b.Set(f.Name, f.Value)
	}

	for _, f := range where {
		b = b.Where(f.Name+" = ?", f.Value)
	}

	return toStatement(op, b)
}

// BuildDelete builds
//
//	DELETE FROM <table> WHERE w1 = ? AND w2 = ?
//
// An empty where is rejected with [ErrEmptyWhere] unless allRows is set.
func BuildDelete(table string, where Where, allRows bool) (Statement, error) {
	const op = "delete"

	if table == "" {
		return Statement{}, configError(op, "table", ErrNoTable)
	}

	if err := checkWhere(where, allRows); err != nil {
		return Statement{}, configError(op, "where", err)
	}

	b := sq.Delete(table)

	for _, f := range where {
		b = b.Where(f.Name+" = ?", f.Value)
	}

	return toStatement(op, b)
}

// BuildCount builds SELECT COUNT(*) FROM <table>.
func BuildCount(table string) (Statement, error) {
	const op = "count"

	if table == "" {
		return Statement{}, configError(op, "table", ErrNoTable)
	}

	return toStatement(op, sq.Select("COUNT(*)").From(table))
}

func checkWhere(where Where, allRows bool) error {
	if len(where) == 0 {
		if allRows {
			return nil
		}

		return ErrEmptyWhere
	}

	return validateFields(where)
}

func toStatement(op string, b sq.Sqlizer) (Statement, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("%s: build: %w", op, err)
	}

	return Statement{SQL: query, Args: args}, nil
}
