package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// lineReader supplies REPL input lines.
type lineReader interface {
	// ReadLine returns the next line. ok is false at end of input.
	ReadLine(prompt string) (line string, ok bool, err error)
	// Interactive reports whether a person is typing the lines.
	Interactive() bool
	Close() error
}

// newLineReader returns a liner-backed reader when in is a terminal and a
// plain line scanner otherwise. historyFile may be empty.
func newLineReader(in io.Reader, historyFile string, log zerolog.Logger) lineReader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return newTermLines(historyFile, log)
	}

	return newScanLines(in)
}

// scanLines reads newline-separated lines from a non-terminal reader.
type scanLines struct {
	scanner *bufio.Scanner
}

func newScanLines(in io.Reader) *scanLines {
	if in == nil {
		in = strings.NewReader("")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	return &scanLines{scanner: scanner}
}

func (s *scanLines) ReadLine(string) (string, bool, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), true, nil
	}

	err := s.scanner.Err()
	if err != nil {
		return "", false, fmt.Errorf("read input: %w", err)
	}

	return "", false, nil
}

func (s *scanLines) Interactive() bool { return false }

func (s *scanLines) Close() error { return nil }

// termLines reads lines with editing, completion and history.
type termLines struct {
	state       *liner.State
	historyFile string
	log         zerolog.Logger
}

func newTermLines(historyFile string, log zerolog.Logger) *termLines {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(completeDot)

	t := &termLines{state: state, historyFile: historyFile, log: log}
	t.loadHistory()

	return t
}

func (t *termLines) ReadLine(prompt string) (string, bool, error) {
	line, err := t.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("read input: %w", err)
	}

	if strings.TrimSpace(line) != "" {
		t.state.AppendHistory(line)
	}

	return line, true, nil
}

func (t *termLines) Interactive() bool { return true }

// Close saves the history and restores the terminal.
func (t *termLines) Close() error {
	saveErr := t.saveHistory()
	closeErr := t.state.Close()

	return errors.Join(saveErr, closeErr)
}

func (t *termLines) loadHistory() {
	if t.historyFile == "" {
		return
	}

	f, err := os.Open(t.historyFile)
	if err != nil {
		if !os.IsNotExist(err) {
			t.log.Warn().Err(err).Str("path", t.historyFile).Msg("cannot read history")
		}

		return
	}

	defer func() { _ = f.Close() }()

	_, err = t.state.ReadHistory(f)
	if err != nil {
		t.log.Warn().Err(err).Str("path", t.historyFile).Msg("cannot read history")
	}
}

// saveHistory replaces the history file atomically.
func (t *termLines) saveHistory() error {
	if t.historyFile == "" {
		return nil
	}

	var buf bytes.Buffer

	_, err := t.state.WriteHistory(&buf)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	return writeHistoryFile(t.historyFile, &buf)
}

func writeHistoryFile(path string, r io.Reader) error {
	err := atomic.WriteFile(path, r)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	return nil
}

// completeDot completes REPL dot commands.
func completeDot(line string) []string {
	if !strings.HasPrefix(line, ".") || strings.Contains(line, " ") {
		return nil
	}

	var out []string

	for _, c := range dotCommands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}

	return out
}
