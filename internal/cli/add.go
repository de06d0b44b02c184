package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tuimorrow/internal/task"
)

const defaultList = "Inbox"

// AddCmd returns the add command.
func AddCmd(a *app) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.StringP("list", "l", defaultList, "List the task belongs to")
	fs.StringP("due", "d", "today", "Due date: YYYY-MM-DD, today or tomorrow")

	return &Command{
		Flags: fs,
		Usage: "add <name> [flags]",
		Short: "Add a task, prints its key",
		Long: `Add a task. Words after the flags form the task name.

A task is identified by its name and due date; adding the same name twice
on one day fails. The list does not have to exist yet.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execAdd(ctx, io, a, fs, args)
		},
	}
}

func execAdd(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return errNameRequired
	}

	list, _ := fs.GetString("list")
	if list == "" {
		return fmt.Errorf("%w: --list", errEmptyValue)
	}

	rawDue, _ := fs.GetString("due")

	now := time.Now()

	due, err := parseDue(rawDue, now)
	if err != nil {
		return err
	}

	s, err := a.session(ctx)
	if err != nil {
		return err
	}

	t := task.NewAt(name, list, due, now)

	err = s.AddTask(ctx, t)
	if err != nil {
		return err
	}

	if _, known := s.Colors.Lookup(list); !known {
		io.ErrPrintln("note: list " + list + " does not exist yet; create it with 'tuimorrow new-list " + list + "'")
	}

	io.Println(t.Key())

	return nil
}

// parseDue accepts a date or one of the relative words today and tomorrow.
func parseDue(raw string, now time.Time) (task.Date, error) {
	today := task.DateOf(now)

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return task.NewDate(today.Year, today.Month, today.Day+1), nil
	}

	return task.ParseDate(raw)
}
