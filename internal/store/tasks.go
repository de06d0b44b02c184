package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/tuimorrow/internal/task"
)

// InsertTask writes one task row. A second task with the same name and due
// date fails with [ErrConstraintViolation]; the existing row is kept. Dates
// that could not be read back (zero, year outside 1-9999, not normalized)
// fail the same way and nothing is written.
func (s *Store) InsertTask(ctx context.Context, t task.Task) error {
	const op = "insert task"

	err := checkTaskDates(t)
	if err != nil {
		return &Error{Op: op, Table: taskTable, Key: t.Key(), Kind: ErrConstraintViolation, Err: err}
	}

	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return err
	}
	defer cancel()

	query, args, err := s.sq.Insert(taskTable).
		Columns(taskColumns...).
		Values(taskValues(t)...).
		ToSql()
	if err != nil {
		return unavailable(op, fmt.Errorf("build query: %w", err))
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr(op, taskTable, t.Key(), err)
	}

	s.log.WithFields(logrus.Fields{"op": op, "key": t.Key(), "list": t.ListName}).Debug("task inserted")

	return nil
}

// QueryTasks returns every task, or only those whose list equals *list when
// list is non-nil. Row order is unspecified.
func (s *Store) QueryTasks(ctx context.Context, list *string) ([]task.Task, error) {
	const op = "query tasks"

	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	builder := s.sq.Select(taskSelectColumns...).From(taskTable)
	if list != nil {
		builder = builder.Where(squirrel.Eq{"list": *list})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, unavailable(op, fmt.Errorf("build query: %w", err))
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, taskTable, "", err)
	}

	defer func() { _ = rows.Close() }()

	tasks := make([]task.Task, 0)

	for rows.Next() {
		t, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, wrapErr(op, taskTable, "", scanErr)
		}

		tasks = append(tasks, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, wrapErr(op, taskTable, "", err)
	}

	s.log.WithFields(logrus.Fields{"op": op, "rows": len(tasks), "filtered": list != nil}).Debug("tasks queried")

	return tasks, nil
}

func checkTaskDates(t task.Task) error {
	if !t.DueDate.Valid() {
		return fmt.Errorf("dueDate: %w %q", task.ErrInvalidDate, t.DueDate.String())
	}

	if !t.CreateDate.Valid() {
		return fmt.Errorf("createDate: %w %q", task.ErrInvalidDate, t.CreateDate.String())
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row selected with taskSelectColumns.
func scanTask(row rowScanner) (task.Task, error) {
	var (
		name       sql.NullString
		list       string
		createDate sql.NullString
		dueDate    sql.NullString
	)

	err := row.Scan(&name, &list, &createDate, &dueDate)
	if err != nil {
		return task.Task{}, fmt.Errorf("scan: %w", err)
	}

	if !name.Valid {
		return task.Task{}, malformed("query tasks", taskTable, "", fmt.Errorf("task name is NULL (list %q)", list))
	}

	t := task.Task{Name: name.String, ListName: list}
	key := t.Name + "@" + dueDate.String

	t.CreateDate, err = parseStoredDate(createDate, "createDate")
	if err != nil {
		return task.Task{}, malformed("query tasks", taskTable, key, err)
	}

	t.DueDate, err = parseStoredDate(dueDate, "dueDate")
	if err != nil {
		return task.Task{}, malformed("query tasks", taskTable, key, err)
	}

	return t, nil
}

func parseStoredDate(value sql.NullString, column string) (task.Date, error) {
	if !value.Valid {
		return task.Date{}, fmt.Errorf("%s is NULL", column)
	}

	d, err := task.ParseDate(value.String)
	if err != nil {
		return task.Date{}, fmt.Errorf("%s: %w", column, err)
	}

	return d, nil
}
