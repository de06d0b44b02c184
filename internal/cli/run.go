package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tuimorrow/internal/config"
	"github.com/calvinalkan/tuimorrow/internal/session"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal on it cancels the running command; the
// session is still closed before Run returns.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("tuimorrow", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(io.Discard)

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	dataDir := globals.String("data-dir", "", "Override the data `dir`")
	verbose := globals.BoolP("verbose", "v", false, "Log debug output to stderr")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	rest := globals.Args()
	if *help || len(rest) == 0 {
		printUsage(out)

		return 0
	}

	input := config.LoadInput{
		WorkDir:            *workDir,
		ConfigPath:         *configPath,
		DataDirOverride:    *dataDir,
		HasDataDirOverride: globals.Changed("data-dir"),
		Env:                env,
	}
	if *verbose {
		input.LogLevelOverride = logrus.DebugLevel.String()
	}

	cfg, err := config.Load(input)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	a := &app{
		cfg: cfg,
		env: env,
		in:  in,
		log: newLogger(errOut, cfg.Level()),
	}

	code := a.dispatch(ctx, NewIO(out, errOut), rest)

	closeErr := a.close()
	if closeErr != nil {
		fprintln(errOut, "error:", closeErr)

		return 1
	}

	return code
}

// app is the state shared by the commands of one Run. The session is opened
// on first use so config-only commands never touch the database.
type app struct {
	cfg     config.Config
	env     map[string]string
	in      io.Reader
	log     *logrus.Logger
	sess    *session.Session
	inShell bool
}

func (a *app) session(ctx context.Context) (*session.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}

	s, err := session.Open(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}

	a.sess = s

	return s, nil
}

func (a *app) close() error {
	err := a.sess.Close()
	a.sess = nil

	return err
}

// commands returns fresh command values; a FlagSet keeps parsed state, so
// each invocation needs its own.
func (a *app) commands() []*Command {
	return []*Command{
		AddCmd(a),
		LsCmd(a),
		ListsCmd(a),
		NewListCmd(a),
		ColorsCmd(),
		ShellCmd(a),
		PrintConfigCmd(&a.cfg),
		InitConfigCmd(a),
	}
}

func (a *app) lookup(name string) *Command {
	for _, cmd := range a.commands() {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

func (a *app) dispatch(ctx context.Context, o *IO, args []string) int {
	name := args[0]

	cmd := a.lookup(name)
	if cmd == nil {
		o.ErrPrintln("error:", fmt.Errorf("%w: %s", errUnknownCommand, name))
		printUsage(o.errOut)

		return 1
	}

	return cmd.Run(ctx, o, args[1:])
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(writer io.Writer) {
	fprintln(writer, `tuimorrow - tasks due today, tomorrow and later

Usage: tuimorrow [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
      --data-dir <dir>   Override the data directory
  -v, --verbose          Log debug output to stderr

Commands:`)

	for _, cmd := range (&app{}).commands() {
		fprintln(writer, cmd.HelpLine())
	}
}
