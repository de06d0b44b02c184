package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/tuimorrow/internal/task"
)

// InsertList writes one list row. An existing name fails with
// [ErrConstraintViolation].
func (s *Store) InsertList(ctx context.Context, l task.List) error {
	const op = "insert list"

	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return err
	}
	defer cancel()

	query, args, err := s.sq.Insert(listTable).
		Columns(listColumns...).
		Values(listValues(l)...).
		ToSql()
	if err != nil {
		return unavailable(op, fmt.Errorf("build query: %w", err))
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr(op, listTable, l.Name, err)
	}

	s.log.WithFields(logrus.Fields{"op": op, "key": l.Name, "color": l.Color.Hex()}).Debug("list inserted")

	return nil
}

// ListColor returns the color of one list, or [ErrNotFound] when no list
// row has that name.
func (s *Store) ListColor(ctx context.Context, name string) (task.Color, error) {
	const op = "get list color"

	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return task.Color{}, err
	}
	defer cancel()

	query, args, err := s.sq.Select("color").
		From(listTable).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return task.Color{}, unavailable(op, fmt.Errorf("build query: %w", err))
	}

	var raw string

	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Color{}, notFound(op, listTable, name)
	}

	if err != nil {
		return task.Color{}, wrapErr(op, listTable, name, err)
	}

	color, err := task.ParseColor(raw)
	if err != nil {
		return task.Color{}, malformed(op, listTable, name, err)
	}

	s.log.WithFields(logrus.Fields{"op": op, "key": name}).Debug("list color loaded")

	return color, nil
}

// AllListColors returns every list's color keyed by list name.
func (s *Store) AllListColors(ctx context.Context) (map[string]task.Color, error) {
	const op = "get all list colors"

	lists, err := s.queryLists(ctx, op)
	if err != nil {
		return nil, err
	}

	colors := make(map[string]task.Color, len(lists))
	for _, l := range lists {
		colors[l.Name] = l.Color
	}

	return colors, nil
}

// Lists returns every list row ordered by name.
func (s *Store) Lists(ctx context.Context) ([]task.List, error) {
	return s.queryLists(ctx, "list lists")
}

func (s *Store) queryLists(ctx context.Context, op string) ([]task.List, error) {
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query, args, err := s.sq.Select(listColumns...).
		From(listTable).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, unavailable(op, fmt.Errorf("build query: %w", err))
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, listTable, "", err)
	}

	defer func() { _ = rows.Close() }()

	lists := make([]task.List, 0)

	for rows.Next() {
		var name, raw string

		scanErr := rows.Scan(&name, &raw)
		if scanErr != nil {
			return nil, wrapErr(op, listTable, "", fmt.Errorf("scan: %w", scanErr))
		}

		color, parseErr := task.ParseColor(raw)
		if parseErr != nil {
			return nil, malformed(op, listTable, name, parseErr)
		}

		lists = append(lists, task.List{Name: name, Color: color})
	}

	err = rows.Err()
	if err != nil {
		return nil, wrapErr(op, listTable, "", err)
	}

	s.log.WithFields(logrus.Fields{"op": op, "rows": len(lists)}).Debug("lists queried")

	return lists, nil
}
