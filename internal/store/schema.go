package store

import (
	"github.com/calvinalkan/tuimorrow/internal/task"
)

const (
	taskTable = "Task"
	listTable = "List"
)

// schemaStatements create the final date-only schema. Both are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS Task (
		name TEXT,
		list TEXT NOT NULL,
		createDate DATE NOT NULL,
		dueDate DATE,
		PRIMARY KEY (name, dueDate)
	)`,
	`CREATE TABLE IF NOT EXISTS List (
		name TEXT PRIMARY KEY,
		color TEXT NOT NULL
	)`,
}

// taskColumns and taskValues are the only place that maps Task fields to
// columns. Keep them in the same order.
var taskColumns = []string{"name", "list", "createDate", "dueDate"}

func taskValues(t task.Task) []any {
	return []any{
		t.Name,
		t.ListName,
		t.CreateDate.String(),
		t.DueDate.String(),
	}
}

// taskSelectColumns reads dates as raw text. The column decltype DATE makes
// the driver coerce values to time.Time and silently zero them when parsing
// fails, which would hide corrupt rows.
var taskSelectColumns = []string{
	"name",
	"list",
	"CAST(createDate AS TEXT)",
	"CAST(dueDate AS TEXT)",
}

var listColumns = []string{"name", "color"}

func listValues(l task.List) []any {
	return []any{l.Name, l.Color.Hex()}
}
