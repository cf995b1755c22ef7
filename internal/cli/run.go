package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/sqlcrud/internal/logging"
	"github.com/calvinalkan/sqlcrud/pkg/sqlcrud"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal received on it cancels the command context.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := newGlobalFlags()

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	err := globals.fs.Parse(rest)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals.fs, commands(nil))

		return 1
	}

	remaining := globals.fs.Args()

	if errors.Is(err, flag.ErrHelp) || globals.help || len(remaining) == 0 {
		printUsage(out, globals.fs, commands(nil))

		return 0
	}

	cfg, err := LoadConfig(LoadConfigInput{
		WorkDirOverride: globals.workDir,
		ConfigPath:      globals.configPath,
		Overrides: Config{
			DB:       globals.db,
			Table:    globals.table,
			LogLevel: globals.logLevel,
		},
		DBOverridden: globals.fs.Changed("db"),
		Env:          env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	_, err = logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	logCfg := logging.DefaultConfig()
	logCfg.Output = errOut

	if cfg.LogLevel != "" {
		logCfg.Level = cfg.LogLevel
	}

	a := &app{
		cfg:   cfg,
		in:    in,
		log:   logging.NewWithComponent(logCfg, "cli"),
		dbLog: logging.New(logCfg),
	}

	name := remaining[0]

	var cmd *Command

	for _, c := range commands(a) {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
		fprintln(errOut)
		printUsage(errOut, globals.fs, commands(nil))

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case sig := <-sigCh:
				a.log.Debug().Str("signal", sig.String()).Msg("interrupted")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), remaining[1:])
}

// app carries resolved state shared by all commands.
type app struct {
	cfg   Config
	in    io.Reader
	log   zerolog.Logger
	dbLog zerolog.Logger
}

// withDB opens the configured database for the duration of fn.
func (a *app) withDB(ctx context.Context, fn func(db *sqlcrud.DB) error) error {
	return sqlcrud.With(ctx, sqlcrud.Config{
		Path:   a.cfg.DBAbs,
		Table:  a.cfg.Table,
		Logger: &a.dbLog,
	}, fn)
}

// commands returns every command in help order. a may be nil when the
// commands are only listed.
func commands(a *app) []*Command {
	return []*Command{
		ExecCmd(a),
		InsertCmd(a),
		UpdateCmd(a),
		DeleteCmd(a),
		GetCmd(a),
		QueryCmd(a),
		CountCmd(a),
		ReplCmd(a),
		VersionCmd(),
		PrintConfigCmd(a),
	}
}

type globalFlags struct {
	fs         *flag.FlagSet
	workDir    string
	configPath string
	db         string
	table      string
	logLevel   string
	help       bool
}

func newGlobalFlags() *globalFlags {
	g := &globalFlags{fs: flag.NewFlagSet("sqlcrud", flag.ContinueOnError)}

	g.fs.SetInterspersed(false)
	g.fs.SetOutput(io.Discard)
	g.fs.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	g.fs.StringVarP(&g.configPath, "config", "c", "", "Use the specified config `file`")
	g.fs.StringVar(&g.db, "db", "", "SQLite database `path` (default sqlcrud.db)")
	g.fs.StringVarP(&g.table, "table", "t", "", "Initially selected `table`")
	g.fs.StringVar(&g.logLevel, "log-level", "", "Log `level` (debug, info, warn, error, off)")
	g.fs.BoolVarP(&g.help, "help", "h", false, "Show help")

	return g
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, cmds []*Command) {
	fprintln(w, `sqlcrud - CRUD helpers over an SQLite database

Usage: sqlcrud [global flags] <command> [args]

Global flags:`)

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(io.Discard)
	_, _ = io.WriteString(w, buf.String())

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range cmds {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, `Run "sqlcrud <command> --help" for command flags.`)
}
