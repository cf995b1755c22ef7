package cli_test

import (
	"bytes"
	"testing"

	"github.com/calvinalkan/sqlcrud/internal/cli"
)

func Test_Bare_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	// Call Run directly without test helper (which adds --cwd)
	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"sqlcrud"}, nil, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "sqlcrud - CRUD helpers over an SQLite database")
	cli.AssertContains(t, stdout.String(), "Global flags:")
	cli.AssertContains(t, stdout.String(), "--cwd")
	cli.AssertContains(t, stdout.String(), "insert [flags] col=value...")
	cli.AssertContains(t, stdout.String(), "repl [flags]")
}

func Test_Help_Flag_Prints_Usage_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--help")

	cli.AssertContains(t, stdout, "Usage: sqlcrud [global flags] <command> [args]")
	cli.AssertContains(t, stdout, "--log-level")
}

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "count")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")

	// Should show valid global options
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--config")
	cli.AssertContains(t, stderr, "--db")
	cli.AssertContains(t, stderr, "--table")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Version_Prints_Library_Version_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	if got, want := c.MustRun("version"), "sqlcrud 0.1"; got != want {
		t.Errorf("version=%q, want=%q", got, want)
	}
}

func Test_Command_Help_Shows_Usage_And_Flags_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("update", "--help")

	cli.AssertContains(t, stdout, "Usage: sqlcrud update [flags] col=value...")
	cli.AssertContains(t, stdout, "rejected unless --all is given")
	cli.AssertContains(t, stdout, "--where")
	cli.AssertContains(t, stdout, "--all")
}

func Test_Command_Unknown_Flag_Shows_Usage_On_Stderr_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("count", "--bogus")

	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: sqlcrud count [flags]")
}

func Test_Invalid_Log_Level_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--log-level", "loud", "version")

	cli.AssertContains(t, stderr, "invalid log level")
}

func Test_Debug_Log_Level_Logs_Statements_To_Stderr_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.Run("--log-level", "debug", "exec", "CREATE TABLE t (x)")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}

	cli.AssertContains(t, stderr, "database opened")
	cli.AssertContains(t, stderr, "CREATE TABLE t (x)")
}

func Test_Default_Log_Level_Hides_Statement_Logs_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.Run("exec", "CREATE TABLE t (x)")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}

	cli.AssertNotContains(t, stderr, "database opened")
	cli.AssertNotContains(t, stderr, "CREATE TABLE t (x)")
}
