package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

const (
	shellPrompt     = "tuimorrow> "
	historyFileName = "history"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// ShellCmd returns the shell command.
func ShellCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive prompt",
		Long: `Start an interactive prompt that runs the other commands, one per line,
against a single open database. Quote names that contain spaces.
Type 'help' for commands and 'exit' or Ctrl-D to leave.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return errUnexpectedArgs
			}

			return execShell(ctx, o, a)
		},
	}
}

// lineReader is the prompt source: liner on a terminal, a plain scanner
// for any other input.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

func execShell(ctx context.Context, o *IO, a *app) error {
	if a.inShell {
		return errNestedShell
	}

	a.inShell = true
	defer func() { a.inShell = false }()

	// Open up front so the lock is held for the whole shell and a broken
	// store fails before the first prompt.
	_, err := a.session(ctx)
	if err != nil {
		return err
	}

	reader := a.newLineReader()
	defer func() { _ = reader.Close() }()

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := reader.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		reader.AppendHistory(line)

		words, err := splitLine(line)
		if err != nil {
			printError(o, err)

			continue
		}

		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			printUsage(o.out)

			continue
		}

		cmd := a.lookup(words[0])
		if cmd == nil {
			printError(o, fmt.Errorf("%w: %s", errUnknownCommand, words[0]))

			continue
		}

		// Errors are printed by Run; the shell keeps going.
		_ = cmd.Run(ctx, o, words[1:])
	}
}

func (a *app) newLineReader() lineReader {
	if f, ok := a.in.(*os.File); ok && f == os.Stdin {
		return newLinerReader(filepath.Join(a.cfg.DataDirAbs, historyFileName))
	}

	in := a.in
	if in == nil {
		in = strings.NewReader("")
	}

	return &scanReader{scanner: bufio.NewScanner(in)}
}

// linerReader reads from the terminal with line editing and history.
type linerReader struct {
	state       *liner.State
	historyPath string
}

func newLinerReader(historyPath string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath); err == nil {
		_, _ = state.ReadHistory(f)
		_ = f.Close()
	}

	return &linerReader{state: state, historyPath: historyPath}
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	return r.state.Prompt(prompt)
}

func (r *linerReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

// Close saves history and restores the terminal.
func (r *linerReader) Close() error {
	var buf bytes.Buffer

	_, histErr := r.state.WriteHistory(&buf)
	if histErr == nil {
		histErr = atomic.WriteFile(r.historyPath, &buf)
	}

	return errors.Join(histErr, r.state.Close())
}

// scanReader reads lines from a non-terminal reader without echoing the
// prompt.
type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}

	if err := r.scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (*scanReader) AppendHistory(string) {}

func (*scanReader) Close() error { return nil }

// splitLine splits a shell line into words. Double or single quotes group
// words; there are no escapes.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		quote   rune
		inWord  bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()

				inWord = false
			}
		default:
			current.WriteRune(r)

			inWord = true
		}
	}

	if quote != 0 {
		return nil, errUnterminatedQuote
	}

	if inWord {
		words = append(words, current.String())
	}

	return words, nil
}
