// Package view holds the in-memory, sorted set of tasks that the UI renders.
package view

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/calvinalkan/tuimorrow/internal/task"
)

// Querier loads tasks, optionally restricted to one list. *store.Store
// implements it.
type Querier interface {
	QueryTasks(ctx context.Context, list *string) ([]task.Task, error)
}

// View is the current task set under an optional list filter. Reload is the
// only way the set changes; SetFilter and ClearFilter take effect on the next
// Reload.
//
// View is safe for concurrent use.
type View struct {
	src Querier

	mu     sync.RWMutex
	filter *string
	tasks  []task.Task
}

// New returns an empty, unfiltered view over src.
func New(src Querier) *View {
	return &View{src: src}
}

// SetFilter restricts the next Reload to tasks in list.
func (v *View) SetFilter(list string) {
	v.mu.Lock()
	v.filter = &list
	v.mu.Unlock()
}

// ClearFilter makes the next Reload return every task.
func (v *View) ClearFilter() {
	v.mu.Lock()
	v.filter = nil
	v.mu.Unlock()
}

// Filter reports the active list filter, if any.
func (v *View) Filter() (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.filter == nil {
		return "", false
	}

	return *v.filter, true
}

// Reload clears the set and refills it from the source under the current
// filter, sorted by due date then name. On error the set is left empty and
// the source error is returned unchanged.
func (v *View) Reload(ctx context.Context) error {
	v.mu.RLock()
	var filter *string
	if v.filter != nil {
		f := *v.filter
		filter = &f
	}
	v.mu.RUnlock()

	tasks, err := v.src.QueryTasks(ctx, filter)
	if err != nil {
		v.mu.Lock()
		v.tasks = nil
		v.mu.Unlock()

		return err
	}

	sorted := slices.Clone(tasks)
	Sort(sorted)

	v.mu.Lock()
	v.tasks = sorted
	v.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current set in display order.
func (v *View) Snapshot() []task.Task {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]task.Task, len(v.tasks))
	copy(out, v.tasks)

	return out
}

// Len returns the number of tasks in the current set.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.tasks)
}

// Sort orders tasks by due date, then name. List and creation date break
// the remaining ties so the order is deterministic.
func Sort(tasks []task.Task) {
	slices.SortStableFunc(tasks, Compare)
}

// Compare is the display order used by [Sort].
func Compare(a, b task.Task) int {
	return cmp.Or(
		a.DueDate.Compare(b.DueDate),
		strings.Compare(a.Name, b.Name),
		strings.Compare(a.ListName, b.ListName),
		a.CreateDate.Compare(b.CreateDate),
	)
}
