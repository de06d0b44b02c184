package cli

import (
	"errors"

	"github.com/calvinalkan/tuimorrow/internal/store"
	"github.com/calvinalkan/tuimorrow/internal/task"
)

var (
	errNameRequired   = errors.New("name is required")
	errEmptyValue     = errors.New("empty value not allowed")
	errUnknownCommand = errors.New("unknown command")
	errUnexpectedArgs = errors.New("unexpected arguments")
	errNestedShell    = errors.New("already in a shell")
	errNoConfigPath   = errors.New("no config path given and $XDG_CONFIG_HOME and $HOME are unset")
)

// hintFor returns the next step a user can take for err, or "" if there is
// nothing useful to suggest.
func hintFor(err error) string {
	switch {
	case errors.Is(err, task.ErrInvalidDate):
		return "dates are written YYYY-MM-DD"
	case errors.Is(err, task.ErrInvalidColor), errors.Is(err, task.ErrUnknownColor):
		return "use #RRGGBB or a name from 'tuimorrow colors'"
	case errors.Is(err, store.ErrConstraintViolation):
		return "pick another name or date"
	case errors.Is(err, store.ErrNotFound):
		return "create the list first (tuimorrow new-list <name>)"
	case errors.Is(err, store.ErrStorageUnavailable):
		return "retry later; another tuimorrow may hold the database"
	case errors.Is(err, store.ErrMalformedStoredValue):
		return "the database holds a corrupt row; fix or remove it with sqlite3"
	default:
		return ""
	}
}

func printError(o *IO, err error) {
	o.ErrPrintln("error:", err)

	if hint := hintFor(err); hint != "" {
		o.ErrPrintln("hint:", hint)
	}
}
