package storage

import (
	"sort"
	"sync"
)

// Memory is a thread-safe in-memory implementation of Store.
type Memory[T Item] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	seq   uint64
}

type entry[T Item] struct {
	item T
	seq  uint64
}

// NewMemory creates an empty Memory store.
func NewMemory[T Item]() *Memory[T] {
	return &Memory[T]{items: make(map[string]entry[T])}
}

// Get retrieves an item by ID.
func (s *Memory[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return e.item, ok
}

// Set stores or replaces an item.
func (s *Memory[T]) Set(item T) error {
	id := item.StoreID()
	if id == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[id]; ok {
		s.items[id] = entry[T]{item: item, seq: e.seq}
		return nil
	}
	s.seq++
	s.items[id] = entry[T]{item: item, seq: s.seq}
	return nil
}

// Delete removes an item by ID.
func (s *Memory[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// List returns all items sorted by priority (descending) then insertion.
func (s *Memory[T]) List() []T {
	return s.collect(func(T) bool { return true })
}

// ListByGroup returns the items of group.
func (s *Memory[T]) ListByGroup(group string) []T {
	return s.collect(func(item T) bool { return item.StoreGroup() == group })
}

func (s *Memory[T]) collect(keep func(T) bool) []T {
	s.mu.RLock()
	entries := make([]entry[T], 0, len(s.items))
	for _, e := range s.items {
		if keep(e.item) {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		pi, pj := entries[i].item.StorePriority(), entries[j].item.StorePriority()
		if pi != pj {
			return pi > pj
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.item
	}
	return out
}

// Count returns the number of stored items.
func (s *Memory[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes all items.
func (s *Memory[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]entry[T])
}

// Exists checks if an item with the given ID exists.
func (s *Memory[T]) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}
