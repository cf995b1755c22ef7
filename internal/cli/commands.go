package cli

import (
	"context"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/sqlcrud/pkg/sqlcrud"
)

// ExecCmd returns the exec command.
func ExecCmd(a *app) *Command {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "exec <sql> [args...]",
		Short: "Execute a statement and commit",
		Long: `Execute one SQL statement and commit it.

Arguments after the statement are bound to its ? placeholders:
null binds NULL, integers and floats bind numbers, 'quoted' binds text.`,
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			query, bind, err := splitStatement(args)
			if err != nil {
				return err
			}

			return a.withDB(ctx, func(db *sqlcrud.DB) error {
				return db.Exec(ctx, query, bind...)
			})
		},
	}
}

// InsertCmd returns the insert command.
func InsertCmd(a *app) *Command {
	fs := flag.NewFlagSet("insert", flag.ContinueOnError)
	fs.StringP("table", "t", "", "Target table (default: selected table)")

	return &Command{
		Flags: fs,
		Usage: "insert [flags] col=value...",
		Short: "Insert a row and print its id",
		Long:  "Insert one row built from col=value pairs and print the id of the new row.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			table, _ := fs.GetString("table")

			fields, err := requireAssignments(args)
			if err != nil {
				return err
			}

			return a.withDB(ctx, func(db *sqlcrud.DB) error {
				id, err := db.Insert(ctx, sqlcrud.Insert{Table: table, Record: sqlcrud.Record(fields)})
				if err != nil {
					return err
				}

				o.Println(id)

				return nil
			})
		},
	}
}

// UpdateCmd returns the update command.
func UpdateCmd(a *app) *Command {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.StringP("table", "t", "", "Target table (default: selected table)")
	fs.StringArrayP("where", "w", nil, "Match rows where col=value (repeatable, joined with AND)")
	fs.Bool("all", false, "Update every row when no --where is given")

	return &Command{
		Flags: fs,
		Usage: "update [flags] col=value...",
		Short: "Update matching rows",
		Long: `Set col=value on every row matching all --where conditions.

An update without --where is rejected unless --all is given.`,
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			table, _ := fs.GetString("table")
			allRows, _ := fs.GetBool("all")
			whereArgs, _ := fs.GetStringArray("where")

			fields, err := requireAssignments(args)
			if err != nil {
				return err
			}

			where, err := parseAssignments(whereArgs)
			if err != nil {
				return err
			}

			return a.withDB(ctx, func(db *sqlcrud.DB) error {
				return db.Update(ctx, sqlcrud.Update{
					Table:   table,
					Record:  sqlcrud.Record(fields),
					Where:   sqlcrud.Where(where),
					AllRows: allRows,
				})
			})
		},
	}
}

// DeleteCmd returns the delete command.
func DeleteCmd(a *app) *Command {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.StringP("table", "t", "", "Target table (default: selected table)")
	fs.StringArrayP("where", "w", nil, "Match rows where col=value (repeatable, joined with AND)")
	fs.Bool("all", false, "Delete every row when no --where is given")

	return &Command{
		Flags: fs,
		Usage: "delete [flags]",
		Short: "Delete matching rows",
		Long: `Delete every row matching all --where conditions.

A delete without --where is rejected unless --all is given.`,
		Exec: func(ctx context.Context, _ *IO, _ []string) error {
			table, _ := fs.GetString("table")
			allRows, _ := fs.GetBool("all")
			whereArgs, _ := fs.GetStringArray("where")

			where, err := parseAssignments(whereArgs)
			if err != nil {
				return err
			}

			return a.withDB(ctx, func(db *sqlcrud.DB) error {
				return db.Delete(ctx, sqlcrud.Delete{
					Table:   table,
					Where:   sqlcrud.Where(where),
					AllRows: allRows,
				})
			})
		},
	}
}

// CountCmd returns the count command.
func CountCmd(a *app) *Command {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.StringP("table", "t", "", "Table to count (default: selected table)")

	return &Command{
		Flags: fs,
		Usage: "count [flags]",
		Short: "Print the number of rows in a table",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			table, _ := fs.GetString("table")

			return a.withDB(ctx, func(db *sqlcrud.DB) error {
				n, err := db.Count(ctx, table)
				if err != nil {
					return err
				}

				o.Println(strconv.FormatInt(n, 10))

				return nil
			})
		},
	}
}

// VersionCmd returns the version command.
func VersionCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("version", flag.ContinueOnError),
		Usage: "version",
		Short: "Print the library version",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			o.Println("sqlcrud", sqlcrud.Version())

			return nil
		},
	}
}

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	fs := flag.NewFlagSet("print-config", flag.ContinueOnError)
	fs.Bool("json", false, "Print the config file form (JSON) instead")

	return &Command{
		Flags: fs,
		Usage: "print-config [flags]",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			asJSON, _ := fs.GetBool("json")
			if asJSON {
				formatted, err := FormatConfig(a.cfg)
				if err != nil {
					return err
				}

				o.Println(formatted)

				return nil
			}

			return execPrintConfig(o, a.cfg)
		},
	}
}

func execPrintConfig(o *IO, cfg Config) error {
	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Println("db=" + cfg.DBAbs)
	o.Println("table=" + cfg.Table)
	o.Println("log_level=" + cfg.LogLevel)
	o.Println("history_file=" + cfg.HistoryFileAbs)

	o.Println("")
	o.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("(defaults only)")

		return nil
	}

	if cfg.Sources.Global != "" {
		o.Println("global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("project_config=" + cfg.Sources.Project)
	}

	return nil
}

// splitStatement splits args into the SQL text and parsed bind values.
func splitStatement(args []string) (string, []any, error) {
	if len(args) == 0 || args[0] == "" {
		return "", nil, ErrSQLRequired
	}

	bind, err := parseLiterals(args[1:])
	if err != nil {
		return "", nil, err
	}

	return args[0], bind, nil
}

func requireAssignments(args []string) ([]sqlcrud.Field, error) {
	if len(args) == 0 {
		return nil, ErrAssignmentRequired
	}

	return parseAssignments(args)
}
