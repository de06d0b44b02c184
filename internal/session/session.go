// Package session owns the store, color cache and task view for one run of
// the program. It replaces process-wide singletons: everything that needs
// storage receives a *Session.
package session

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/tuimorrow/internal/colorcache"
	"github.com/calvinalkan/tuimorrow/internal/config"
	"github.com/calvinalkan/tuimorrow/internal/store"
	"github.com/calvinalkan/tuimorrow/internal/task"
	"github.com/calvinalkan/tuimorrow/internal/view"
)

// Session is an open store with its derived in-memory state.
type Session struct {
	Store  *store.Store
	Colors *colorcache.Cache
	View   *view.View

	log logrus.FieldLogger
}

// Open opens the store described by cfg, ensures the schema and warms the
// color cache. On any failure everything opened so far is closed.
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*Session, error) {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	st, err := store.Open(ctx, cfg.StoreOptions(log))
	if err != nil {
		return nil, err
	}

	s, err := newSession(ctx, st, log)
	if err != nil {
		return nil, errors.Join(err, st.Close())
	}

	s.log.WithField("path", st.Path()).Debug("session opened")

	return s, nil
}

func newSession(ctx context.Context, st *store.Store, log logrus.FieldLogger) (*Session, error) {
	err := st.EnsureSchema(ctx)
	if err != nil {
		return nil, err
	}

	colors := colorcache.New(st)

	err = colors.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{
		Store:  st,
		Colors: colors,
		View:   view.New(st),
		log:    log.WithField("component", "session"),
	}, nil
}

// AddTask stores t. The list is not required to exist.
func (s *Session) AddTask(ctx context.Context, t task.Task) error {
	return s.Store.InsertTask(ctx, t)
}

// CreateList stores a new list and caches its color. Once the row is
// committed it does not fail.
func (s *Session) CreateList(ctx context.Context, l task.List) error {
	err := s.Store.InsertList(ctx, l)
	if err != nil {
		return err
	}

	s.Colors.Put(l.Name, l.Color)

	return nil
}

// Tasks reloads the view under filter (nil for all lists) and returns the
// ordered result.
func (s *Session) Tasks(ctx context.Context, filter *string) ([]task.Task, error) {
	if filter == nil {
		s.View.ClearFilter()
	} else {
		s.View.SetFilter(*filter)
	}

	err := s.View.Reload(ctx)
	if err != nil {
		return nil, err
	}

	return s.View.Snapshot(), nil
}

// Close releases the store. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}

	return s.Store.Close()
}
