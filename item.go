// SPDX-License-Identifier: MIT
package treestore

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
)

const readErrFmt = "failed to read (%s): %w"

// Payload errors.
var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidType  = errors.New("invalid data type")
)

type (
	// Item defines an interface for records that can be indexed by a [Store].
	//
	// Implementations must keep ID & Parent stable while the item is held by a [Store]; change
	// an item's parent through [Store.UpdateItem] only.
	Item[K comparable] interface {
		// ID obtains the item's identifier, unique within a [Store].
		ID() K
		// Parent obtains the parent identifier; ok is false for a root item.
		Parent() (parent K, ok bool)
	}

	// Record is the default [Item] implementation holding an opaque payload.
	Record[K comparable] struct {
		id        K
		parent    K
		hasParent bool

		// fields holds the payload, never inspected by the [Store].
		fields map[string]any
	}
)

// NewRecord instantiates a root [Record].
func NewRecord[K comparable](id K, fields map[string]any) *Record[K] {
	if fields == nil {
		fields = make(map[string]any)
	}

	return &Record[K]{id: id, fields: fields}
}

// NewChild instantiates a [Record] under parent.
func NewChild[K comparable](id, parent K, fields map[string]any) *Record[K] {
	r := NewRecord(id, fields)
	r.parent, r.hasParent = parent, true

	return r
}

// ID obtains the [Record]'s identifier.
func (r *Record[K]) ID() K { return r.id }

// Parent obtains the [Record]'s parent identifier.
func (r *Record[K]) Parent() (K, bool) { return r.parent, r.hasParent }

// Field obtains a payload value.
func (r *Record[K]) Field(name string) (value any, ok bool) {
	value, ok = r.fields[name]
	return
}

// FieldString obtains a string payload value.
func (r *Record[K]) FieldString(name string) (strVal string, err error) {
	val, ok := r.fields[name]
	if !ok {
		return "", fmt.Errorf(readErrFmt, name, ErrMissingField)
	}

	if strVal, ok = val.(string); !ok {
		err = fmt.Errorf(readErrFmt, name, ErrInvalidType)
	}

	return
}

// FieldInt obtains an integer payload value.
//
// JSON sources yield float64 numbers, YAML sources int.
func (r *Record[K]) FieldInt(name string) (intVal int, err error) {
	val, ok := r.fields[name]
	if !ok {
		return 0, fmt.Errorf(readErrFmt, name, ErrMissingField)
	}

	switch v := val.(type) {
	case int:
		intVal = v
	case int64:
		intVal = int(v)
	case float64:
		if v != float64(int(v)) {
			err = fmt.Errorf(readErrFmt, name, ErrInvalidType)
			return
		}
		intVal = int(v)
	default:
		err = fmt.Errorf(readErrFmt, name, ErrInvalidType)
	}

	return
}

// FieldBool obtains a boolean payload value.
func (r *Record[K]) FieldBool(name string) (boolVal bool, err error) {
	val, ok := r.fields[name]
	if !ok {
		return false, fmt.Errorf(readErrFmt, name, ErrMissingField)
	}

	if boolVal, ok = val.(bool); !ok {
		err = fmt.Errorf(readErrFmt, name, ErrInvalidType)
	}

	return
}

// Fields obtains a copy of the payload.
func (r *Record[K]) Fields() map[string]any { return maps.Clone(r.fields) }

// WithParent returns a copy of the [Record] moved under parent, for use with [Store.UpdateItem].
func (r *Record[K]) WithParent(parent K) *Record[K] {
	return NewChild(r.id, parent, maps.Clone(r.fields))
}

// WithField returns a copy of the [Record] with a payload value set, for use with
// [Store.UpdateItem].
func (r *Record[K]) WithField(name string, value any) *Record[K] {
	c := &Record[K]{id: r.id, parent: r.parent, hasParent: r.hasParent, fields: maps.Clone(r.fields)}
	if c.fields == nil {
		c.fields = make(map[string]any)
	}
	c.fields[name] = value

	return c
}

// String is the fmt.Stringer implementation for a [Record].
func (r *Record[K]) String() string {
	if !r.hasParent {
		return fmt.Sprintf("{id: %v}", r.id)
	}

	return fmt.Sprintf("{id: %v, parent: %v}", r.id, r.parent)
}
