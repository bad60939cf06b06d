// SPDX-License-Identifier: MIT
package treestore

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Synced is a thread-safe [Store].
//
// Query results are copies, safe to use after the lock is released.
type Synced[K comparable, I Item[K]] struct {
	m     sync.RWMutex
	store *Store[K, I]
}

// NewSynced wraps a [Store] for use by multiple goroutines.
//
// The [Store] must not be used directly afterwards.
func NewSynced[K comparable, I Item[K]](store *Store[K, I]) *Synced[K, I] {
	return &Synced[K, I]{store: store}
}

// Len retrieves the number of items held.
func (s *Synced[K, I]) Len() int {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.store.Len()
}

// All lists every item in insertion order.
func (s *Synced[K, I]) All() []I {
	s.m.RLock()
	defer s.m.RUnlock()
	return slices.Clone(s.store.All())
}

// Item retrieves an item by its identifier.
func (s *Synced[K, I]) Item(id K) (I, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.store.Item(id)
}

// Children lists the immediate children of a parent.
func (s *Synced[K, I]) Children(id K) []I {
	s.m.RLock()
	defer s.m.RUnlock()
	return append([]I{}, s.store.Children(id)...)
}

// Roots lists the items lacking a parent.
func (s *Synced[K, I]) Roots() []I {
	s.m.RLock()
	defer s.m.RUnlock()
	return append([]I{}, s.store.Roots()...)
}

// AllChildren lists every descendant of a parent, breadth-first.
func (s *Synced[K, I]) AllChildren(id K) []I {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.store.AllChildren(id)
}

// AllParents lists the ancestry of an item, self first.
func (s *Synced[K, I]) AllParents(id K) []I {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.store.AllParents(id)
}

// AddItem indexes a new item.
func (s *Synced[K, I]) AddItem(item I) bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.store.AddItem(item)
}

// UpdateItem replaces a held item.
func (s *Synced[K, I]) UpdateItem(item I) bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.store.UpdateItem(item)
}

// RemoveItem removes an item & its descendants.
func (s *Synced[K, I]) RemoveItem(id K) bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.store.RemoveItem(id)
}

// View runs fn with read access to the wrapped [Store].
//
// fn must not mutate the [Store] nor retain its slices.
func (s *Synced[K, I]) View(fn func(*Store[K, I])) {
	s.m.RLock()
	defer s.m.RUnlock()
	fn(s.store)
}
