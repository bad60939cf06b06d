// SPDX-License-Identifier: MIT
package treestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Snapshot validation errors.
var (
	ErrInvalidSource = errors.New("invalid store source")

	ErrDuplicateID    = errors.New("duplicate id")
	ErrDanglingParent = errors.New("parent not in source")
	ErrCycle          = errors.New("parent cycle")
)

// Validate checks a snapshot for duplicate identifiers & parent cycles before it is indexed.
//
// Parents missing from the snapshot are reported only when [WithStrictParents] is set. Every
// problem found is reported, joined & wrapped in [ErrInvalidSource].
func Validate[K comparable, I Item[K]](ctx context.Context, items []I, options ...Option) (err error) {
	cfg := newConfig(options...)

	defer func() {
		if err == nil {
			return
		}

		// Skip expensive operation if not debug.
		if cfg.Debug {
			cfg.Logger.Debugf("invalid source: %s", spew.Sprint(items))
		}
		err = fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var errs []error

	g := simple.NewDirectedGraph()
	nodes := make(map[K]int64, len(items))
	values := make(map[int64]K, len(items))

	// Duplicates are reported once & kept out of the graph.
	duplicates := make(map[int]struct{})

	for index, item := range items {
		id := item.ID()
		if _, ok := nodes[id]; ok {
			errs = append(errs, fmt.Errorf("(%v) %w", id, ErrDuplicateID))
			duplicates[index] = struct{}{}
			continue
		}

		n := g.NewNode()
		g.AddNode(n)
		nodes[id], values[n.ID()] = n.ID(), id
	}

	for index, item := range items {
		if _, ok := duplicates[index]; ok {
			continue
		}

		parent, ok := item.Parent()
		if !ok {
			continue
		}

		id := item.ID()
		if parent == id {
			// simple.DirectedGraph disallows self edges.
			errs = append(errs, fmt.Errorf("%w: %v", ErrCycle, []K{id}))
			continue
		}

		from, ok := nodes[parent]
		if !ok {
			if cfg.StrictParents {
				errs = append(errs, fmt.Errorf("(%v) %w (%v)", id, ErrDanglingParent, parent))
			}
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(from), g.Node(nodes[id])))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		errs = append(errs, fmt.Errorf("%w: %v", ErrCycle, cycleValues(component, values)))
	}

	return errors.Join(errs...)
}

func cycleValues[K comparable](component []graph.Node, values map[int64]K) (cycle []K) {
	cycle = make([]K, len(component))
	for index := range component {
		cycle[index] = values[component[index].ID()]
	}

	return
}
