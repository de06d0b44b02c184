package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tuimorrow/internal/session"
	"github.com/calvinalkan/tuimorrow/internal/store"
	"github.com/calvinalkan/tuimorrow/internal/task"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.StringP("list", "l", "", "Only show tasks in this list")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List tasks",
		Long:  "List tasks ordered by due date, then name.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return errUnexpectedArgs
			}

			return execLs(ctx, io, a, fs)
		},
	}
}

func execLs(ctx context.Context, io *IO, a *app, fs *flag.FlagSet) error {
	var filter *string

	if fs.Changed("list") {
		list, _ := fs.GetString("list")
		filter = &list
	}

	s, err := a.session(ctx)
	if err != nil {
		return err
	}

	tasks, err := s.Tasks(ctx, filter)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		color, colorErr := listColor(ctx, s, t.ListName)
		if colorErr != nil {
			return colorErr
		}

		io.Printf("%s  %s  [%s %s]\n", t.DueDate, t.Name, t.ListName, color)
	}

	return nil
}

// listColor renders the color of list, or "?" for a list that has tasks
// but no List row.
func listColor(ctx context.Context, s *session.Session, list string) (string, error) {
	color, err := s.Colors.Resolve(ctx, list)
	if errors.Is(err, store.ErrNotFound) {
		return "?", nil
	}

	if err != nil {
		return "", err
	}

	return color.Hex(), nil
}

// ListsCmd returns the lists command.
func ListsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("lists", flag.ContinueOnError),
		Usage: "lists",
		Short: "List task lists and their colors",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return errUnexpectedArgs
			}

			s, err := a.session(ctx)
			if err != nil {
				return err
			}

			lists, err := s.Store.Lists(ctx)
			if err != nil {
				return err
			}

			for _, l := range lists {
				io.Printf("%s  %s\n", l.Color.Hex(), l.Name)
			}

			return nil
		},
	}
}

// NewListCmd returns the new-list command.
func NewListCmd(a *app) *Command {
	fs := flag.NewFlagSet("new-list", flag.ContinueOnError)
	fs.String("color", "blue", "Palette name or #RRGGBB")

	return &Command{
		Flags: fs,
		Usage: "new-list <name> [flags]",
		Short: "Create a list",
		Long:  "Create a list with a display color. List names are unique.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execNewList(ctx, io, a, fs, args)
		},
	}
}

func execNewList(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return errNameRequired
	}

	if len(args) > 1 {
		return errUnexpectedArgs
	}

	raw, _ := fs.GetString("color")

	color, err := task.ResolveColor(raw)
	if err != nil {
		return err
	}

	s, err := a.session(ctx)
	if err != nil {
		return err
	}

	l := task.List{Name: args[0], Color: color}

	err = s.CreateList(ctx, l)
	if err != nil {
		return err
	}

	io.Printf("%s  %s\n", color.Hex(), l.Name)

	return nil
}

// ColorsCmd returns the colors command.
func ColorsCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("colors", flag.ContinueOnError),
		Usage: "colors",
		Short: "Show the named color palette",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			for _, c := range task.Palette() {
				io.Printf("%s  %s\n", c.Color.Hex(), c.Name)
			}

			return nil
		},
	}
}
