package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/sqlcrud/pkg/sqlcrud"
)

var (
	errUnknownDotCommand = errors.New("unknown command (try .help)")
	errInvalidAutocommit = errors.New("expected .autocommit on|off")
	errMissingWhere      = errors.New("expected: .update col=value... where col=value... (or where *)")
)

const replHelp = `Statements starting with SELECT, PRAGMA, WITH, VALUES or EXPLAIN print
their rows; any other line is executed. With autocommit off, changes stay
pending until .commit.

  .table [name]                   Show or select the current table
  .count [table]                  Count rows in a table
  .insert col=value...            Insert a row into the current table
  .update col=value... where w... Update rows (where * updates every row)
  .delete col=value... | *        Delete matching rows (always commits)
  .commit                         Commit pending changes
  .rollback                       Discard pending changes
  .autocommit [on|off]            Show or toggle autocommit
  .help                           Show this help
  .quit                           Exit (pending changes are discarded)`

// dotCommands lists the REPL commands offered by tab completion.
var dotCommands = []string{
	".table", ".count", ".insert", ".update", ".delete",
	".commit", ".rollback", ".autocommit", ".help", ".quit",
}

// ReplCmd returns the repl command.
func ReplCmd(a *app) *Command {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.Bool("no-history", false, "Do not read or write the history file")
	fs.Bool("no-autocommit", false, "Start with autocommit off")

	return &Command{
		Flags: fs,
		Usage: "repl [flags]",
		Short: "Start an interactive SQL shell",
		Long: `Start an interactive SQL shell on the configured database.

Line editing and history are available when stdin is a terminal; otherwise
lines are read from stdin as a script. Type .help inside the shell.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			noHistory, _ := fs.GetBool("no-history")
			noAutocommit, _ := fs.GetBool("no-autocommit")

			historyFile := a.cfg.HistoryFileAbs
			if noHistory {
				historyFile = ""
			}

			return a.withDB(ctx, func(db *sqlcrud.DB) (err error) {
				lines := newLineReader(a.in, historyFile, a.log)

				defer func() {
					closeErr := lines.Close()
					if closeErr != nil {
						err = errors.Join(err, closeErr)
					}
				}()

				r := &repl{
					db:          db,
					o:           o,
					log:         a.log,
					autocommit:  !noAutocommit,
					interactive: lines.Interactive(),
				}

				return r.run(ctx, lines)
			})
		},
	}
}

type repl struct {
	db          *sqlcrud.DB
	o           *IO
	log         zerolog.Logger
	autocommit  bool
	interactive bool
	failed      int
}

func (r *repl) run(ctx context.Context, lines lineReader) error {
	if r.interactive {
		r.o.Println("sqlcrud", sqlcrud.Version(), "on", r.db.Path())
		r.o.Println("Type .help for commands.")
	}

	for ctx.Err() == nil {
		line, ok, err := lines.ReadLine(r.prompt())
		if err != nil {
			return err
		}

		if !ok {
			break
		}

		if r.handle(ctx, line) {
			break
		}
	}

	if r.db.InTx() {
		r.o.Warn("uncommitted changes discarded", "run .commit before .quit to keep them")
	}

	if r.failed > 0 {
		r.o.Warn(fmt.Sprintf("%d statement(s) failed", r.failed), "see the errors above")
	}

	return nil
}

func (r *repl) prompt() string {
	if r.db.InTx() {
		return "sqlcrud*> "
	}

	return "sqlcrud> "
}

// handle runs one input line and reports whether the REPL should exit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "--") {
		return false
	}

	var (
		quit bool
		err  error
	)

	if strings.HasPrefix(line, ".") {
		quit, err = r.dot(ctx, line)
	} else {
		err = r.statement(ctx, line)
	}

	if err != nil {
		r.failed++
		r.o.ErrPrintln("error:", err)
	}

	return quit
}

func (r *repl) statement(ctx context.Context, line string) error {
	if !isQuery(line) {
		if r.autocommit {
			return r.db.Exec(ctx, line)
		}

		return r.db.ExecNoCommit(ctx, line)
	}

	n, err := printResults(ctx, r.o, r.db, line, nil, false)
	if err != nil {
		return err
	}

	if r.interactive {
		r.o.Printf("(%d %s)\n", n, plural(n, "row", "rows"))
	}

	return nil
}

func (r *repl) dot(ctx context.Context, line string) (bool, error) {
	fields := splitArgs(line)
	name, args := fields[0], fields[1:]

	switch name {
	case ".quit", ".exit", ".q":
		return true, nil
	case ".help":
		r.o.Println(replHelp)
	case ".table":
		if len(args) == 0 {
			table := r.db.Table()
			if table == "" {
				table = "(none)"
			}

			r.o.Println(table)

			return false, nil
		}

		r.db.SetTable(args[0])
	case ".count":
		table := ""
		if len(args) > 0 {
			table = args[0]
		}

		n, err := r.db.Count(ctx, table)
		if err != nil {
			return false, err
		}

		r.o.Println(n)
	case ".insert":
		return false, r.insert(ctx, args)
	case ".update":
		return false, r.update(ctx, args)
	case ".delete":
		return false, r.delete(ctx, args)
	case ".commit":
		return false, r.db.Commit()
	case ".rollback":
		return false, r.db.Rollback()
	case ".autocommit":
		return false, r.setAutocommit(args)
	default:
		return false, fmt.Errorf("%s: %w", name, errUnknownDotCommand)
	}

	return false, nil
}

func (r *repl) insert(ctx context.Context, args []string) error {
	fields, err := requireAssignments(args)
	if err != nil {
		return err
	}

	in := sqlcrud.Insert{Record: sqlcrud.Record(fields)}

	var id int64

	if r.autocommit {
		id, err = r.db.Insert(ctx, in)
	} else {
		id, err = r.db.InsertNoCommit(ctx, in)
	}

	if err != nil {
		return err
	}

	r.o.Println(id)

	return nil
}

func (r *repl) update(ctx context.Context, args []string) error {
	idx := -1

	for i, arg := range args {
		if strings.EqualFold(arg, "where") {
			idx = i

			break
		}
	}

	if idx < 0 {
		return errMissingWhere
	}

	fields, err := requireAssignments(args[:idx])
	if err != nil {
		return err
	}

	in := sqlcrud.Update{Record: sqlcrud.Record(fields)}

	whereArgs := args[idx+1:]
	if len(whereArgs) == 1 && whereArgs[0] == "*" {
		in.AllRows = true
	} else {
		where, err := parseAssignments(whereArgs)
		if err != nil {
			return err
		}

		in.Where = sqlcrud.Where(where)
	}

	if r.autocommit {
		return r.db.Update(ctx, in)
	}

	return r.db.UpdateNoCommit(ctx, in)
}

func (r *repl) delete(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "*" {
		return r.db.Delete(ctx, sqlcrud.Delete{AllRows: true})
	}

	where, err := parseAssignments(args)
	if err != nil {
		return err
	}

	return r.db.Delete(ctx, sqlcrud.Delete{Where: sqlcrud.Where(where)})
}

func (r *repl) setAutocommit(args []string) error {
	if len(args) == 0 {
		r.o.Println("autocommit=" + onOff(r.autocommit))

		return nil
	}

	switch strings.ToLower(args[0]) {
	case "on":
		r.autocommit = true
	case "off":
		r.autocommit = false
	default:
		return errInvalidAutocommit
	}

	r.log.Debug().Bool("autocommit", r.autocommit).Msg("autocommit changed")

	return nil
}

// isQuery reports whether line is a statement whose rows should be printed.
func isQuery(line string) bool {
	word, _, _ := strings.Cut(strings.TrimLeft(line, "( \t"), " ")

	switch strings.ToUpper(strings.TrimRight(word, ";")) {
	case "SELECT", "PRAGMA", "WITH", "VALUES", "EXPLAIN":
		return true
	default:
		return false
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}

func onOff(b bool) string {
	if b {
		return "on"
	}

	return "off"
}
