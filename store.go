// SPDX-License-Identifier: MIT
package treestore

import (
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/exp/slices"
)

type (
	// Store indexes a forest of [Item]s held as flat records.
	//
	// Three views are kept in lock-step: the items in insertion order, an id lookup & the
	// children of each parent. Parents need not be present in the Store (dangling parents).
	//
	// Synchronization is unnecessary, the type is designed for a single owner; see [Synced] for
	// shared use. Slices returned by queries are live views & must be treated as read-only.
	Store[K comparable, I Item[K]] struct {
		// cfg contains a pointer to the [Config] for the Store.
		cfg *Config

		// items holds every item in insertion order.
		items []I

		// byID maps an identifier to its item.
		byID map[K]I

		// children holds the direct children of a parent, in insertion order.
		//
		// Empty lists are deleted rather than kept.
		children map[parentKey[K]][]I
	}

	// parentKey distinguishes the absent parent from every identifier, the zero value included.
	parentKey[K comparable] struct {
		id K
		ok bool
	}
)

var dumpConfig = spew.ConfigState{Indent: "  ", SortKeys: true, SpewKeys: true, DisablePointerAddresses: true}

// New instantiates a [Store] from a snapshot of items, indexed in input order.
//
// An item whose identifier is already indexed is skipped (first write wins) for both lookup &
// enumeration, matching [Store.AddItem]. This deliberately departs from keeping the last write
// for lookup while enumerating every duplicate, which breaks the one-to-one pairing of [Store.All]
// & [Store.Item]; use [Validate] to reject such snapshots instead.
func New[K comparable, I Item[K]](items []I, options ...Option) *Store[K, I] {
	s := &Store[K, I]{
		cfg:      newConfig(options...),
		items:    make([]I, 0, len(items)),
		byID:     make(map[K]I, len(items)),
		children: make(map[parentKey[K]][]I),
	}

	for _, item := range items {
		if !s.AddItem(item) {
			s.cfg.Logger.WithField("id", item.ID()).Warn("duplicate id skipped")
		}
	}

	return s
}

// FromRecords instantiates a [Store] of [Record]s.
func FromRecords[K comparable](records []*Record[K], options ...Option) *Store[K, *Record[K]] {
	return New[K](records, options...)
}

// keyOf obtains the children-list key for an item.
func keyOf[K comparable, I Item[K]](item I) parentKey[K] {
	id, ok := item.Parent()
	if !ok {
		return parentKey[K]{}
	}

	return parentKey[K]{id: id, ok: true}
}

// Config retrieves the [Store]'s Config.
func (s *Store[K, I]) Config() *Config { return s.cfg }

// Len retrieves the number of items held.
func (s *Store[K, I]) Len() int { return len(s.items) }

// All lists every item in insertion order.
func (s *Store[K, I]) All() []I { return s.items }

// Item retrieves an item by its identifier.
func (s *Store[K, I]) Item(id K) (item I, ok bool) {
	item, ok = s.byID[id]
	return
}

// Has checks for the existence of an identifier.
func (s *Store[K, I]) Has(id K) (ok bool) {
	_, ok = s.byID[id]
	return
}

// Children lists the immediate children of a parent.
//
// The parent need not be held by the [Store]; an empty slice is returned for a parent without
// children.
func (s *Store[K, I]) Children(id K) []I {
	return s.childrenOf(parentKey[K]{id: id, ok: true})
}

// Roots lists the items lacking a parent.
func (s *Store[K, I]) Roots() []I {
	return s.childrenOf(parentKey[K]{})
}

func (s *Store[K, I]) childrenOf(key parentKey[K]) []I {
	if list, ok := s.children[key]; ok {
		return list
	}

	return []I{}
}

// IsGroup checks whether an item has children.
func (s *Store[K, I]) IsGroup(id K) bool {
	return len(s.children[parentKey[K]{id: id, ok: true}]) > 0
}

// AllChildren lists immediate and children-of children for a parent, breadth-first.
//
// Peers are listed in insertion order.
func (s *Store[K, I]) AllChildren(id K) (children []I) {
	children = make([]I, 0)
	s.walk(id, func(item I, _ bool) { children = append(children, item) })

	if s.cfg.Debug {
		s.cfg.Logger.Debugf("children of (%v): %d", id, len(children))
	}

	return
}

// AllChildrenByLevel lists immediate and children-of children for a parent, grouped by level.
func (s *Store[K, I]) AllChildrenByLevel(id K) (levels [][]I) {
	levels = make([][]I, 0)
	s.walk(id, func(item I, newPeers bool) {
		if newPeers {
			levels = append(levels, []I{})
		}
		last := len(levels) - 1
		levels[last] = append(levels[last], item)
	})

	return
}

// AllParents lists the ancestry of an item, starting with the item itself & ending at its root.
//
// The chain ends at an item without a parent or whose parent is not held by the [Store]. An
// unknown identifier yields an empty slice.
func (s *Store[K, I]) AllParents(id K) (parents []I) {
	parents = make([]I, 0)
	visited := make(map[K]struct{})

	current, ok := s.byID[id]
	for ok {
		// Parent cycle.
		if _, seen := visited[current.ID()]; seen {
			break
		}
		visited[current.ID()] = struct{}{}
		parents = append(parents, current)

		parentID, hasParent := current.Parent()
		if !hasParent {
			break
		}
		current, ok = s.byID[parentID]
	}

	return
}

// AddItem indexes a new item.
//
// An item whose identifier is already held is ignored; the return value reports whether the
// item was added.
func (s *Store[K, I]) AddItem(item I) bool {
	id := item.ID()
	if _, ok := s.byID[id]; ok {
		return false
	}

	s.items = append(s.items, item)
	s.byID[id] = item
	s.link(item)

	if s.cfg.Debug {
		s.cfg.Logger.WithField("id", id).Debug("item added")
	}

	return true
}

// RemoveItem removes an item & all its descendants.
//
// An unknown identifier is ignored; the return value reports whether anything was removed.
func (s *Store[K, I]) RemoveItem(id K) bool {
	item, ok := s.byID[id]
	if !ok {
		return false
	}

	removed := map[K]struct{}{id: {}}
	s.walk(id, func(child I, _ bool) { removed[child.ID()] = struct{}{} })

	for rid := range removed {
		delete(s.byID, rid)
		delete(s.children, parentKey[K]{id: rid, ok: true})
	}
	s.unlink(keyOf[K](item), id)

	s.items = without(s.items, func(x I) bool {
		_, ok := removed[x.ID()]
		return ok
	})

	if s.cfg.Debug {
		s.cfg.Logger.WithField("id", id).Debugf("removed %d item(s)", len(removed))
	}

	return true
}

// UpdateItem replaces a held item wholesale.
//
// An item moved to a different parent is appended to its new parent's children, otherwise it
// keeps its position. An unknown identifier is ignored; the return value reports whether the
// item was replaced.
func (s *Store[K, I]) UpdateItem(item I) bool {
	id := item.ID()
	existing, ok := s.byID[id]
	if !ok {
		return false
	}

	sameID := func(x I) bool { return x.ID() == id }

	s.byID[id] = item
	if index := slices.IndexFunc(s.items, sameID); index > -1 {
		s.items[index] = item
	}

	oldKey, newKey := keyOf[K](existing), keyOf[K](item)
	if oldKey == newKey {
		list := s.children[oldKey]
		if index := slices.IndexFunc(list, sameID); index > -1 {
			list[index] = item
		}

		return true
	}

	s.unlink(oldKey, id)
	s.link(item)

	if s.cfg.Debug {
		s.cfg.Logger.WithField("id", id).Debugf("moved from (%v) to (%v)", oldKey.id, newKey.id)
	}

	return true
}

// Dump formats the [Store]'s views for debugging.
func (s *Store[K, I]) Dump() string {
	return dumpConfig.Sdump(struct {
		Items    []I
		Children map[parentKey[K]][]I
	}{s.items, s.children})
}

// link appends an item to its parent's children.
func (s *Store[K, I]) link(item I) {
	key := keyOf[K](item)
	s.children[key] = append(s.children[key], item)
}

// unlink removes an identifier from a parent's children, deleting the list once empty.
func (s *Store[K, I]) unlink(key parentKey[K], id K) {
	list, ok := s.children[key]
	if !ok {
		return
	}

	list = without(list, func(x I) bool { return x.ID() == id })
	if len(list) < 1 {
		delete(s.children, key)
		return
	}
	s.children[key] = list
}

// without filters a list into a new slice, leaving slices handed out by queries intact.
func without[I any](list []I, drop func(I) bool) []I {
	kept := make([]I, 0, len(list))
	for _, x := range list {
		if !drop(x) {
			kept = append(kept, x)
		}
	}

	return kept
}

// walk performs level-order traversal below a parent, excluding the parent itself.
//
// newPeers is set for the first item of each level. Identifiers are visited at most once so a
// parent cycle terminates the walk.
func (s *Store[K, I]) walk(id K, fn func(item I, newPeers bool)) {
	visited := map[K]struct{}{id: {}}

	// The queue is a copy; the children lists are live.
	queue := make([]I, 0)
	enqueue := func(parent K) {
		for _, child := range s.children[parentKey[K]{id: parent, ok: true}] {
			if _, seen := visited[child.ID()]; seen {
				continue
			}
			visited[child.ID()] = struct{}{}
			queue = append(queue, child)
		}
	}
	enqueue(id)

	var front I

	for {
		queueLen := len(queue)
		if queueLen < 1 {
			break
		}

		newPeers := true
		for queueLen > 0 {
			front, queue = queue[0], queue[1:]
			queueLen--

			fn(front, newPeers)
			newPeers = false

			enqueue(front.ID())
		}
	}
}
