package sqlcrud

import "fmt"

// Field is one column/value pair.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered list of column values for one row. The order of the
// fields is the order of the generated columns, placeholders and bound values.
type Record []Field

// Set returns r with name set to value. An existing column keeps its position.
//
//	rec := sqlcrud.Record{}.Set("name", "Ana").Set("age", 30)
func (r Record) Set(name string, value any) Record {
	return Record(setField(r, name, value))
}

// Names returns the column names in order.
func (r Record) Names() []string {
	return fieldNames(r)
}

// Values returns the values in column order.
func (r Record) Values() []any {
	return fieldValues(r)
}

// Where is an ordered list of equality conditions, all ANDed together.
type Where []Field

// Set returns w with the condition name = value. An existing column keeps its
// position.
func (w Where) Set(name string, value any) Where {
	return Where(setField(w, name, value))
}

// Names returns the column names in order.
func (w Where) Names() []string {
	return fieldNames(w)
}

// Values returns the values in condition order.
func (w Where) Values() []any {
	return fieldValues(w)
}

func setField(fields []Field, name string, value any) []Field {
	for i := range fields {
		if fields[i].Name == name {
			out := make([]Field, len(fields))
			copy(out, fields)
			out[i].Value = value

			return out
		}
	}

	out := make([]Field, len(fields), len(fields)+1)
	copy(out, fields)

	return append(out, Field{Name: name, Value: value})
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	return names
}

func fieldValues(fields []Field) []any {
	values := make([]any, len(fields))
	for i, f := range fields {
		values[i] = f.Value
	}

	return values
}

// validateFields rejects empty and repeated column names. Repeated names
// would bind one value twice and shift every following value.
func validateFields(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		if f.Name == "" {
			return ErrEmptyColumn
		}

		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, f.Name)
		}

		seen[f.Name] = struct{}{}
	}

	return nil
}
