package cli

import (
	"context"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tuimorrow/internal/config"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg *config.Config) error {
	formatted, err := config.Format(*cfg)
	if err != nil {
		return err
	}

	io.Println(formatted)
	io.Println("")
	io.Println("# resolved")
	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("data_dir=" + cfg.DataDirAbs)
	io.Println("db_path=" + cfg.DBPath)

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Explicit == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Explicit != "" {
			io.Println("explicit_config=" + cfg.Sources.Explicit)
		}
	}

	return nil
}

// InitConfigCmd returns the init-config command.
func InitConfigCmd(a *app) *Command {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	fs.Bool("force", false, "Overwrite an existing file")

	return &Command{
		Flags: fs,
		Usage: "init-config [path] [flags]",
		Short: "Write a default config file",
		Long: `Write the default configuration as JSON. Without a path the global
config file is written ($XDG_CONFIG_HOME/tuimorrow/config.json or
~/.config/tuimorrow/config.json).`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execInitConfig(io, a, fs, args)
		},
	}
}

func execInitConfig(io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) > 1 {
		return errUnexpectedArgs
	}

	path := config.GlobalPath(a.env)
	if len(args) == 1 {
		path = args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.EffectiveCwd, path)
		}
	}

	if path == "" {
		return errNoConfigPath
	}

	force, _ := fs.GetBool("force")

	err := config.WriteDefault(path, force)
	if err != nil {
		return err
	}

	io.Println(path)

	return nil
}
