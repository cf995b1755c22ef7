package sqlcrud

import (
	"fmt"
	"strings"
)

// Row is one result row. Fields are addressable by position and by column
// name; name lookups are case-insensitive.
//
// Values come back as the driver decodes them. Columns declared DATE,
// DATETIME or TIMESTAMP hold [time.Time] when the stored text parses as a
// timestamp, so a string written there does not read back as a string.
type Row struct {
	columns []string
	values  []any
}

func newRow(columns []string, values []any) *Row {
	return &Row{columns: columns, values: values}
}

// Columns returns the column names in result order.
func (r *Row) Columns() []string {
	return r.columns
}

// Values returns the values in result order.
func (r *Row) Values() []any {
	return r.values
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.values)
}

// Index returns the value at position i. Panics if i is out of range.
func (r *Row) Index(i int) any {
	return r.values[i]
}

// Get returns the value of the first column named name.
func (r *Row) Get(name string) (any, bool) {
	for i, col := range r.columns {
		if strings.EqualFold(col, name) {
			return r.values[i], true
		}
	}

	return nil, false
}

// String returns the named column as a string. BLOB values are converted;
// other types, NULL and missing columns report false.
func (r *Row) String(name string) (string, bool) {
	v, ok := r.Get(name)
	if !ok {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return "", false
	}
}

// Int64 returns the named column as an int64. NULL, missing columns and
// non-integer values report false.
func (r *Row) Int64(name string) (int64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}

	n, ok := v.(int64)

	return n, ok
}

// Float64 returns the named column as a float64. Integer values are converted.
func (r *Row) Float64(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

// Bytes returns the named column as a byte slice. TEXT values are converted.
func (r *Row) Bytes(name string) ([]byte, bool) {
	v, ok := r.Get(name)
	if !ok {
		return nil, false
	}

	switch val := v.(type) {
	case []byte:
		return val, true
	case string:
		return []byte(val), true
	default:
		return nil, false
	}
}

// IsNull reports whether the named column exists and is NULL.
func (r *Row) IsNull(name string) bool {
	v, ok := r.Get(name)

	return ok && v == nil
}

// Map returns the row as a column name to value map. For duplicate column
// names the first one wins.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))

	for i, col := range r.columns {
		if _, ok := m[col]; !ok {
			m[col] = r.values[i]
		}
	}

	return m
}

// Format renders the row as "col=value" pairs in column order.
func (r *Row) Format() string {
	var b strings.Builder

	for i, col := range r.columns {
		if i > 0 {
			b.WriteString(" ")
		}

		b.WriteString(col)
		b.WriteString("=")
		b.WriteString(FormatValue(r.values[i]))
	}

	return b.String()
}

// FormatValue renders a column value for display: NULL for nil, x'..' hex
// for BLOBs, text as is.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%x'", val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
