// Package colorcache memoizes list colors so rendering a task list does not
// hit the store once per row.
//
// Entries never expire: list colors are only written by list creation, which
// goes through the store before any lookup for that name.
package colorcache

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/calvinalkan/tuimorrow/internal/task"
)

// Source is the source of truth the cache fills from. *store.Store
// implements it.
type Source interface {
	ListColor(ctx context.Context, name string) (task.Color, error)
	AllListColors(ctx context.Context) (map[string]task.Color, error)
}

// Cache maps list names to colors. It is safe for concurrent use; concurrent
// misses for the same name share one Source call.
type Cache struct {
	src Source

	mu     sync.RWMutex
	colors map[string]task.Color

	fills singleflight.Group
}

// New returns an empty cache backed by src.
func New(src Source) *Cache {
	return &Cache{
		src:    src,
		colors: make(map[string]task.Color),
	}
}

// Refresh replaces the whole map with the source's current list colors.
// If the source fails, the previous entries are kept and the error is
// returned unchanged.
func (c *Cache) Refresh(ctx context.Context) error {
	fresh, err := c.src.AllListColors(ctx)
	if err != nil {
		return err
	}

	colors := make(map[string]task.Color, len(fresh))
	for name, color := range fresh {
		colors[name] = color
	}

	c.mu.Lock()
	c.colors = colors
	c.mu.Unlock()

	return nil
}

// Resolve returns the color for name, asking the source on a miss and
// memoizing the answer. Source errors are returned unchanged and nothing is
// cached for them, so a list created after a failed lookup resolves on the
// next call.
func (c *Cache) Resolve(ctx context.Context, name string) (task.Color, error) {
	if color, ok := c.Lookup(name); ok {
		return color, nil
	}

	v, err, _ := c.fills.Do(name, func() (any, error) {
		// A fill that finished between our miss and Do already stored it.
		if color, ok := c.Lookup(name); ok {
			return color, nil
		}

		color, err := c.src.ListColor(ctx, name)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.colors[name] = color
		c.mu.Unlock()

		return color, nil
	})
	if err != nil {
		return task.Color{}, err
	}

	return v.(task.Color), nil
}

// Put records a color already known to be stored, such as one just written
// by list creation.
func (c *Cache) Put(name string, color task.Color) {
	c.mu.Lock()
	c.colors[name] = color
	c.mu.Unlock()
}

// Lookup returns a cached color without consulting the source.
func (c *Cache) Lookup(name string) (task.Color, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	color, ok := c.colors[name]

	return color, ok
}

// Names returns the cached list names in sorted order.
func (c *Cache) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.colors))

	for name := range c.colors {
		names = append(names, name)
	}
	c.mu.RUnlock()

	slices.Sort(names)

	return names
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.colors)
}
