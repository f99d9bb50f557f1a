package storage

// Group is a live view of an underlying store restricted to one group.
// Reads are filtered; writes must carry the view's group.
type Group[T Item] struct {
	underlying Store[T]
	group      string
}

// NewGroup creates a view of store restricted to group.
func NewGroup[T Item](store Store[T], group string) *Group[T] {
	return &Group[T]{underlying: store, group: group}
}

// Get retrieves an item by ID, only if it belongs to this group.
func (g *Group[T]) Get(id string) (T, bool) {
	item, ok := g.underlying.Get(id)
	if !ok || item.StoreGroup() != g.group {
		var zero T
		return zero, false
	}
	return item, true
}

// Set stores an item of this group.
func (g *Group[T]) Set(item T) error {
	if item.StoreGroup() != g.group {
		return ErrGroupMismatch
	}
	return g.underlying.Set(item)
}

// Delete removes an item by ID, only if it belongs to this group.
func (g *Group[T]) Delete(id string) bool {
	if _, ok := g.Get(id); !ok {
		return false
	}
	return g.underlying.Delete(id)
}

// List returns the items of this group.
func (g *Group[T]) List() []T {
	return g.underlying.ListByGroup(g.group)
}

// ListByGroup returns the items of group if it is this view's group.
func (g *Group[T]) ListByGroup(group string) []T {
	if group != g.group {
		return nil
	}
	return g.List()
}

// Count returns the number of items in this group.
func (g *Group[T]) Count() int {
	return len(g.List())
}

// Clear removes the items of this group.
func (g *Group[T]) Clear() {
	for _, item := range g.List() {
		g.underlying.Delete(item.StoreID())
	}
}

// Exists checks if an item with the given ID exists in this group.
func (g *Group[T]) Exists(id string) bool {
	_, ok := g.Get(id)
	return ok
}

// Name returns the group this view is restricted to.
func (g *Group[T]) Name() string {
	return g.group
}

var (
	_ Store[Item] = (*Memory[Item])(nil)
	_ Store[Item] = (*Group[Item])(nil)
)
