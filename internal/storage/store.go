// Package storage provides stub storage abstractions and implementations.
package storage

import "errors"

// Errors returned by Set.
var (
	ErrEmptyID       = errors.New("item has no ID")
	ErrGroupMismatch = errors.New("item belongs to another group")
)

// Item is anything a Store can hold.
type Item interface {
	// StoreID is the unique key of the item.
	StoreID() string

	// StoreGroup scopes the item, for example the contract a stub was
	// generated from.
	StoreGroup() string

	// StorePriority orders List: higher first.
	StorePriority() int
}

// Store defines the interface for storing and retrieving items.
type Store[T Item] interface {
	// Get retrieves an item by ID.
	Get(id string) (T, bool)

	// Set stores or replaces an item. A replaced item keeps its position.
	Set(item T) error

	// Delete removes an item by ID. Returns true if deleted, false if not found.
	Delete(id string) bool

	// List returns all items by priority, then insertion order.
	List() []T

	// ListByGroup returns the items of one group, in List order.
	ListByGroup(group string) []T

	// Count returns the number of stored items.
	Count() int

	// Clear removes all items.
	Clear()

	// Exists checks if an item with the given ID exists.
	Exists(id string) bool
}
