// SPDX-License-Identifier: MIT

// Package grid projects a tree store into rows for hierarchical table display.
//
// A row carries the string identity of its item, the root-to-leaf path of identifiers used to
// nest it & whether it groups other rows.
package grid

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"gitlab.com/fisherprime/treestore"
)

type (
	// Source defines the store queries a projection needs.
	//
	// Implemented by [treestore.Store] & [treestore.Synced].
	Source[K comparable, I treestore.Item[K]] interface {
		All() []I
		Children(id K) []I
		AllParents(id K) []I
	}

	// Row is the projection of a single item.
	Row[K comparable, I treestore.Item[K]] struct {
		// ID is the item's string-coerced identifier.
		ID    string
		// Path lists string-coerced identifiers from the root down to the item.
		Path  []string
		// Group is set for items having children.
		Group bool

		Item I
	}

	// Config defines configuration options for [Rows].
	Config struct {
		Logger logrus.FieldLogger
		Debug  bool

		// Workers bounds the goroutines computing rows; ignored when Pool is set.
		Workers int
		// Pool is an optional shared worker pool.
		Pool    *ants.Pool
	}

	// Option defines the [Rows] functional option type.
	Option func(*Config)
)

// Category labels.
const (
	CategoryGroup = "group"
	CategoryItem  = "item"
)

// Projection errors.
var (
	ErrProjection = errors.New("failed to project rows")
)

// DefConfig obtains the package's default [Config].
func DefConfig() *Config {
	return &Config{
		Logger:  logrus.New(),
		Workers: runtime.GOMAXPROCS(0),
	}
}

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option { return func(c *Config) { c.Logger = logger } }

// WithDebug configures the debug option.
func WithDebug(debug bool) Option { return func(c *Config) { c.Debug = debug } }

// WithWorkers configures the workers option.
func WithWorkers(workers int) Option { return func(c *Config) { c.Workers = workers } }

// WithPool configures a shared worker pool.
func WithPool(pool *ants.Pool) Option { return func(c *Config) { c.Pool = pool } }

// RowID obtains the string identity of an identifier.
func RowID[K comparable](id K) string { return fmt.Sprint(id) }

// DataPath lists the string-coerced identifiers from the root down to an item.
//
// An unknown identifier yields an empty path.
func DataPath[K comparable, I treestore.Item[K]](src Source[K, I], id K) []string {
	parents := src.AllParents(id)

	path := make([]string, len(parents))
	for index := range parents {
		path[index] = RowID(parents[index].ID())
	}
	slices.Reverse(path)

	return path
}

// IsGroup checks whether an item has children.
func IsGroup[K comparable, I treestore.Item[K]](src Source[K, I], id K) bool {
	return len(src.Children(id)) > 0
}

// Category labels a row as a group or a plain item.
func (r *Row[K, I]) Category() string {
	if r.Group {
		return CategoryGroup
	}

	return CategoryItem
}

// Project computes the [Row] for a single item.
func Project[K comparable, I treestore.Item[K]](src Source[K, I], item I) Row[K, I] {
	id := item.ID()

	return Row[K, I]{
		ID:    RowID(id),
		Path:  DataPath(src, id),
		Group: IsGroup(src, id),
		Item:  item,
	}
}

// Rows projects every item of a store, in enumeration order.
//
// Rows are computed concurrently; the source must not be mutated until Rows returns unless it
// synchronizes itself (see [treestore.Synced]).
func Rows[K comparable, I treestore.Item[K]](ctx context.Context, src Source[K, I], options ...Option) (rows []Row[K, I], err error) {
	cfg := DefConfig()
	for _, opt := range options {
		opt(cfg)
	}

	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrProjection, err)
		}
	}()

	pool := cfg.Pool
	if pool == nil {
		if pool, err = ants.NewPool(cfg.Workers); err != nil {
			return nil, err
		}
		defer pool.Release()
	}

	items := src.All()
	rows = make([]Row[K, I], len(items))

	wg := new(sync.WaitGroup)
	for index := range items {
		select {
		case <-ctx.Done():
			err = ctx.Err()
		default:
			wg.Add(1)

			item, dst := items[index], &rows[index]
			if err = pool.Submit(func() {
				defer wg.Done()
				*dst = Project(src, item)
			}); err != nil {
				wg.Done()
			}
		}
		if err != nil {
			break
		}
	}
	wg.Wait()

	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		cfg.Logger.Debugf("projected %d row(s)", len(rows))
	}

	return
}
