package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/sqlcrud/pkg/sqlcrud"
)

// GetCmd returns the get command.
func GetCmd(a *app) *Command {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "get <sql> [args...]",
		Short: "Print the first row of a query",
		Long: `Run a read query and print its first row as col=value pairs.

Exits with 1 and a warning if the query returned no rows.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			query, bind, err := splitStatement(args)
			if err != nil {
				return err
			}

			return a.withDB(ctx, func(db *sqlcrud.DB) error {
				row, err := db.GetRow(ctx, query, bind...)
				if err != nil {
					return err
				}

				if row == nil {
					o.Warn(ErrNoRows.Error(), "check the query and its arguments")

					return nil
				}

				o.Println(row.Format())

				return nil
			})
		},
	}
}

// QueryCmd returns the query command.
func QueryCmd(a *app) *Command {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.Bool("tsv", false, "Print a header line and tab-separated values")

	return &Command{
		Flags: fs,
		Usage: "query [flags] <sql> [args...]",
		Short: "Print every row of a query",
		Long:  "Run a read query and stream every row as col=value pairs, one row per line.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			tsv, _ := fs.GetBool("tsv")

			query, bind, err := splitStatement(args)
			if err != nil {
				return err
			}

			return a.withDB(ctx, func(db *sqlcrud.DB) error {
				_, err := printResults(ctx, o, db, query, bind, tsv)

				return err
			})
		},
	}
}

// printResults streams the rows of query to o and returns how many were
// printed.
func printResults(ctx context.Context, o *IO, db *sqlcrud.DB, query string, args []any, tsv bool) (int, error) {
	rows, err := db.GetResults(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	defer func() { _ = rows.Close() }()

	if tsv {
		o.Println(strings.Join(rows.Columns(), "\t"))
	}

	n := 0

	for row, err := range rows.All() {
		if err != nil {
			return n, err
		}

		if tsv {
			o.Println(formatTSV(row))
		} else {
			o.Println(row.Format())
		}

		n++
	}

	return n, nil
}

func formatTSV(row *sqlcrud.Row) string {
	var b strings.Builder

	for i, v := range row.Values() {
		if i > 0 {
			b.WriteByte('\t')
		}

		b.WriteString(sqlcrud.FormatValue(v))
	}

	return b.String()
}
