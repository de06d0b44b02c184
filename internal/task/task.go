// Package task holds the value types shared by the store, the color cache
// and the task view. Values are plain structs and are treated as immutable
// once constructed.
package task

import "time"

// Task is one unit of work. Name and DueDate together form the storage key;
// ListName references [List.Name] by value only.
type Task struct {
	Name       string // Name is the display string, not unique on its own.
	ListName   string // ListName is the owning list; the list row may not exist.
	DueDate    Date   // DueDate is the calendar day the task is due.
	CreateDate Date   // CreateDate is fixed when the task is constructed.
}

// List is a named grouping of tasks with a display color.
type List struct {
	Name  string
	Color Color
}

// New builds a task created today in the local time zone.
func New(name, listName string, due Date) Task {
	return NewAt(name, listName, due, time.Now())
}

// NewAt builds a task whose creation date is the calendar day of now.
func NewAt(name, listName string, due Date, now time.Time) Task {
	return Task{
		Name:       name,
		ListName:   listName,
		DueDate:    due,
		CreateDate: DateOf(now),
	}
}

// Key returns the storage uniqueness key, e.g. "Buy milk@2024-03-15".
func (t Task) Key() string {
	return t.Name + "@" + t.DueDate.String()
}
