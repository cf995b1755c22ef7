package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinalkan/sqlcrud/pkg/sqlcrud"
)

// parseLiteral converts a command-line literal to a bind value:
//
//	null        -> nil
//	42, -7      -> int64
//	3.5, 1e3    -> float64
//	'text'      -> string (quotes stripped, '' unescapes to ')
//	anything    -> string as given
func parseLiteral(s string) (any, error) {
	if strings.EqualFold(s, "null") {
		return nil, nil
	}

	if strings.HasPrefix(s, "'") {
		if len(s) < 2 || !strings.HasSuffix(s, "'") {
			return nil, fmt.Errorf("%w: %s", ErrUnterminatedQuote, s)
		}

		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	// ParseFloat also accepts "inf" and "nan"; those stay strings.
	if strings.ContainsAny(s, "0123456789") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}

	return s, nil
}

// parseLiterals converts positional bind arguments.
func parseLiterals(args []string) ([]any, error) {
	values := make([]any, 0, len(args))

	for _, arg := range args {
		v, err := parseLiteral(arg)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}

// parseAssignments converts "col=value" arguments to fields in argument
// order. Duplicate columns are kept so the library rejects them.
func parseAssignments(args []string) ([]sqlcrud.Field, error) {
	fields := make([]sqlcrud.Field, 0, len(args))

	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, fmt.Errorf("%w, got %q", ErrInvalidAssignment, arg)
		}

		v, err := parseLiteral(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		fields = append(fields, sqlcrud.Field{Name: name, Value: v})
	}

	return fields, nil
}

// splitArgs splits a dot-command line on whitespace. Text inside single
// quotes stays in one token with its quotes kept for [parseLiteral]; a doubled
// '' inside quotes is an escaped quote.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		inToken bool
	)

	for _, r := range line {
		switch {
		case r == '\'':
			inQuote = !inQuote
			inToken = true

			cur.WriteRune(r)
		case !inQuote && (r == ' ' || r == '\t'):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()

				inToken = false
			}
		default:
			inToken = true

			cur.WriteRune(r)
		}
	}

	if inToken {
		args = append(args, cur.String())
	}

	return args
}
