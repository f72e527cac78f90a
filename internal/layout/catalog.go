package layout

import (
	"fmt"
	"iter"

	"github.com/zonetile/zonetile/internal/zone"
)

// Catalog holds the registered layouts: built-ins first, then custom layouts
// in registration order. Built-ins are registered at construction and can
// never be replaced or removed.
type Catalog struct {
	layouts   map[string]Layout
	order     []string
	builtin   map[string]bool
	tolerance float64
}

// NewCatalog constructs a catalog with all built-in layouts registered.
// tolerance is the overlap tolerance applied when validating custom layouts.
func NewCatalog(tolerance float64) *Catalog {
	c := &Catalog{
		layouts:   make(map[string]Layout),
		builtin:   make(map[string]bool),
		tolerance: tolerance,
	}
	for _, l := range Builtins() {
		c.layouts[l.ID] = l
		c.order = append(c.order, l.ID)
		c.builtin[l.ID] = true
	}
	return c
}

// Register validates and adds a custom layout. A custom layout with the same
// id overwrites the previous definition; a built-in id is rejected. Invalid
// layouts never enter the catalog.
func (c *Catalog) Register(l Layout) error {
	if err := l.Validate(c.tolerance); err != nil {
		return err
	}
	if c.builtin[l.ID] {
		return fmt.Errorf("%w: %q is a built-in layout id", zone.ErrInvalidLayout, l.ID)
	}
	if _, exists := c.layouts[l.ID]; !exists {
		c.order = append(c.order, l.ID)
	}
	c.layouts[l.ID] = l
	return nil
}

// Remove deletes a custom layout. Built-ins cannot be removed.
func (c *Catalog) Remove(id string) error {
	if c.builtin[id] {
		return fmt.Errorf("cannot remove built-in layout %q", id)
	}
	if _, ok := c.layouts[id]; !ok {
		return fmt.Errorf("layout %q: %w", id, zone.ErrNotFound)
	}
	delete(c.layouts, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the layout with the given id.
func (c *Catalog) Get(id string) (Layout, error) {
	l, ok := c.layouts[id]
	if !ok {
		return Layout{}, fmt.Errorf("layout %q: %w", id, zone.ErrNotFound)
	}
	return l, nil
}

// Has reports whether a layout id is registered.
func (c *Catalog) Has(id string) bool {
	_, ok := c.layouts[id]
	return ok
}

// HasZone reports whether the layout exists and defines the zone index.
func (c *Catalog) HasZone(id string, index int) bool {
	l, ok := c.layouts[id]
	if !ok {
		return false
	}
	return l.ZonePos(index) >= 0
}

// IsBuiltin reports whether id names a built-in layout.
func (c *Catalog) IsBuiltin(id string) bool {
	return c.builtin[id]
}

// Len returns the number of registered layouts.
func (c *Catalog) Len() int {
	return len(c.layouts)
}

// All yields the registered layouts in registration order: built-ins first,
// then custom layouts in load order. The sequence is restartable.
func (c *Catalog) All() iter.Seq[Layout] {
	return func(yield func(Layout) bool) {
		for _, id := range c.order {
			if !yield(c.layouts[id]) {
				return
			}
		}
	}
}

// CustomIDs returns the ids of all custom (non-built-in) layouts in
// registration order.
func (c *Catalog) CustomIDs() []string {
	var out []string
	for _, id := range c.order {
		if !c.builtin[id] {
			out = append(out, id)
		}
	}
	return out
}
