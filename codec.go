// SPDX-License-Identifier: MIT
package treestore

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	fieldID     = "id"
	fieldParent = "parent"
)

// Snapshot codec errors.
var (
	ErrEmptySource = errors.New("empty snapshot source")
	ErrDecode      = errors.New("failed to decode snapshot")
	ErrEncode      = errors.New("failed to encode snapshot")
	ErrMissingID   = errors.New("record lacks an id")
)

// recordHead captures the structural keys of an encoded [Record].
type recordHead[K comparable] struct {
	ID     *K `json:"id" yaml:"id"`
	Parent *K `json:"parent" yaml:"parent"`
}

// DecodeJSON reads a JSON array of records.
//
// Every key other than id & parent is kept as payload; a missing or null parent marks a root.
func DecodeJSON[K comparable](r io.Reader) (records []*Record[K], err error) {
	if err = json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySource
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return
}

// DecodeYAML reads a YAML sequence of records.
func DecodeYAML[K comparable](r io.Reader) (records []*Record[K], err error) {
	if err = yaml.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySource
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return
}

// LoadJSON decodes a JSON snapshot into a [Store].
func LoadJSON[K comparable](r io.Reader, options ...Option) (*Store[K, *Record[K]], error) {
	records, err := DecodeJSON[K](r)
	if err != nil {
		return nil, err
	}

	return FromRecords(records, options...), nil
}

// LoadYAML decodes a YAML snapshot into a [Store].
func LoadYAML[K comparable](r io.Reader, options ...Option) (*Store[K, *Record[K]], error) {
	records, err := DecodeYAML[K](r)
	if err != nil {
		return nil, err
	}

	return FromRecords(records, options...), nil
}

// EncodeJSON writes items as a JSON array, in the order given.
func EncodeJSON[I any](w io.Writer, items []I) error {
	if err := json.NewEncoder(w).Encode(items); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return nil
}

// EncodeYAML writes items as a YAML sequence, in the order given.
func EncodeYAML[I any](w io.Writer, items []I) (err error) {
	enc := yaml.NewEncoder(w)
	defer func() {
		if cErr := enc.Close(); err == nil && cErr != nil {
			err = fmt.Errorf("%w: %w", ErrEncode, cErr)
		}
	}()

	if err = enc.Encode(items); err != nil {
		err = fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return
}

// MarshalJSON is the json.Marshaler implementation for a [Record].
func (r *Record[K]) MarshalJSON() ([]byte, error) { return json.Marshal(r.flatten()) }

// UnmarshalJSON is the json.Unmarshaler implementation for a [Record].
func (r *Record[K]) UnmarshalJSON(data []byte) (err error) {
	var head recordHead[K]
	if err = json.Unmarshal(data, &head); err != nil {
		return
	}

	fields := make(map[string]any)
	if err = json.Unmarshal(data, &fields); err != nil {
		return
	}

	return r.assign(head, fields)
}

// MarshalYAML is the yaml.Marshaler implementation for a [Record].
func (r *Record[K]) MarshalYAML() (any, error) { return r.flatten(), nil }

// UnmarshalYAML is the yaml.Unmarshaler implementation for a [Record].
func (r *Record[K]) UnmarshalYAML(value *yaml.Node) (err error) {
	var head recordHead[K]
	if err = value.Decode(&head); err != nil {
		return
	}

	fields := make(map[string]any)
	if err = value.Decode(&fields); err != nil {
		return
	}

	return r.assign(head, fields)
}

func (r *Record[K]) assign(head recordHead[K], fields map[string]any) error {
	if head.ID == nil {
		return fmt.Errorf("%w: %v", ErrMissingID, fields)
	}
	if !scalar(*head.ID) {
		return fmt.Errorf(readErrFmt, fieldID, ErrInvalidType)
	}
	if head.Parent != nil && !scalar(*head.Parent) {
		return fmt.Errorf(readErrFmt, fieldParent, ErrInvalidType)
	}
	delete(fields, fieldID)
	delete(fields, fieldParent)

	*r = *NewRecord(*head.ID, fields)
	if head.Parent != nil {
		r.parent, r.hasParent = *head.Parent, true
	}

	return nil
}

// scalar checks that a decoded identifier is usable as a map key.
//
// Interface identifiers may hold decoded arrays or objects, which would panic on hashing.
func scalar[K comparable](v K) bool {
	t := reflect.TypeOf(any(v))
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}

	return false
}

// flatten merges the structural keys into the payload for encoding.
func (r *Record[K]) flatten() map[string]any {
	out := make(map[string]any, len(r.fields)+2)
	for key, value := range r.fields {
		out[key] = value
	}

	out[fieldID] = r.id
	if r.hasParent {
		out[fieldParent] = r.parent
	}

	return out
}
