// SPDX-License-Identifier: MIT
package treestore

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const jsonSnapshot = `[
	{"id": 1, "parent": null, "label": "Pepe"},
	{"id": 2, "parent": 1, "label": "Shneine"},
	{"id": 3, "parent": 1, "label": "Faaa"},
	{"id": 4, "parent": 2, "label": "Item 4", "rank": 7}
]`

const yamlSnapshot = `
- id: a
  label: root
- id: b
  parent: a
  label: child
- id: c
  parent: b
`

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantIDs    []int
		wantParent map[int]int
		wantErr    error
	}{
		{
			name:       "valid",
			input:      jsonSnapshot,
			wantIDs:    []int{1, 2, 3, 4},
			wantParent: map[int]int{2: 1, 3: 1, 4: 2},
		},
		{
			name:    "valid (empty list)",
			input:   `[]`,
			wantIDs: []int{},
		},
		{
			name:    "empty source",
			input:   "",
			wantErr: ErrEmptySource,
		},
		{
			name:    "missing id",
			input:   `[{"parent": 1}]`,
			wantErr: ErrMissingID,
		},
		{
			name:    "mistyped id",
			input:   `[{"id": "one"}]`,
			wantErr: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeJSON[int](strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}

			if gotIDs := ids[int](got); !reflect.DeepEqual(gotIDs, tt.wantIDs) {
				t.Errorf("DecodeJSON() = %v, want %v", gotIDs, tt.wantIDs)
			}
			for _, record := range got {
				parent, ok := record.Parent()
				wantParent, wantOk := tt.wantParent[record.ID()]
				if ok != wantOk || parent != wantParent {
					t.Errorf("Record(%d).Parent() = %v, %v; want %v, %v", record.ID(), parent, ok, wantParent, wantOk)
				}
				if _, ok := record.Field("id"); ok {
					t.Errorf("Record(%d) payload holds the id", record.ID())
				}
			}
		})
	}
}

func TestLoadJSON(t *testing.T) {
	s, err := LoadJSON[int](strings.NewReader(jsonSnapshot), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}

	if got := ids[int](s.AllChildren(1)); !reflect.DeepEqual(got, []int{2, 3, 4}) {
		t.Errorf("Store.AllChildren() = %v, want %v", got, []int{2, 3, 4})
	}

	record, _ := s.Item(4)
	if label, _ := record.Field("label"); label != "Item 4" {
		t.Errorf("Record.Field(label) = %v, want %v", label, "Item 4")
	}
	// Numbers in the payload decode as float64.
	if rank, _ := record.Field("rank"); rank != float64(7) {
		t.Errorf("Record.Field(rank) = %v, want %v", rank, 7)
	}
}

func TestLoadJSON_mixedIDs(t *testing.T) {
	input := `[{"id": 1}, {"id": "91064cee", "parent": 1}, {"id": 4, "parent": "91064cee"}]`

	s, err := LoadJSON[any](strings.NewReader(input), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}

	want := []any{float64(4), "91064cee", float64(1)}
	if got := ids[any](s.AllParents(float64(4))); !reflect.DeepEqual(got, want) {
		t.Errorf("Store.AllParents() = %v, want %v", got, want)
	}
}

func TestLoadJSON_nonScalarIDs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "array id", input: `[{"id": [1]}]`},
		{name: "object id", input: `[{"id": {"a": 1}}]`},
		{name: "object parent", input: `[{"id": 1, "parent": {}}]`},
		{name: "array parent", input: `[{"id": 1, "parent": [2]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LoadJSON[any](strings.NewReader(tt.input), WithLogger(quietLogger()))
			if !errors.Is(err, ErrInvalidType) {
				t.Errorf("LoadJSON() = %v, %v; want error %v", s, err, ErrInvalidType)
			}
		})
	}

	if _, err := LoadYAML[any](strings.NewReader("- id: [1]\n")); !errors.Is(err, ErrInvalidType) {
		t.Errorf("LoadYAML() error = %v, want %v", err, ErrInvalidType)
	}
	if _, err := LoadYAML[any](strings.NewReader("- id: 1\n  parent: {a: 1}\n")); !errors.Is(err, ErrInvalidType) {
		t.Errorf("LoadYAML() error = %v, want %v", err, ErrInvalidType)
	}
}

func TestLoadYAML(t *testing.T) {
	s, err := LoadYAML[string](strings.NewReader(yamlSnapshot), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}

	if got := ids[string](s.AllParents("c")); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Errorf("Store.AllParents() = %v, want %v", got, []string{"c", "b", "a"})
	}
	if got := ids[string](s.Roots()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Store.Roots() = %v, want %v", got, []string{"a"})
	}

	if _, err = LoadYAML[string](strings.NewReader("")); !errors.Is(err, ErrEmptySource) {
		t.Errorf("LoadYAML() error = %v, want %v", err, ErrEmptySource)
	}
	if _, err = LoadYAML[string](strings.NewReader("- parent: a\n")); !errors.Is(err, ErrMissingID) {
		t.Errorf("LoadYAML() error = %v, want %v", err, ErrMissingID)
	}
}

func TestEncode(t *testing.T) {
	s, err := LoadJSON[int](strings.NewReader(jsonSnapshot), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	s.RemoveItem(3)

	t.Run("json", func(t *testing.T) {
		var buffer bytes.Buffer
		if err := EncodeJSON(&buffer, s.All()); err != nil {
			t.Fatalf("EncodeJSON() error = %v", err)
		}
		if strings.Contains(buffer.String(), `"parent":null`) {
			t.Errorf("EncodeJSON() = %s, roots must omit the parent", buffer.String())
		}

		reloaded, err := LoadJSON[int](&buffer, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("LoadJSON() error = %v", err)
		}
		if reloaded.Dump() != s.Dump() {
			t.Errorf("reloaded store:\n%s\nwant:\n%s", reloaded.Dump(), s.Dump())
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buffer bytes.Buffer
		if err := EncodeYAML(&buffer, s.All()); err != nil {
			t.Fatalf("EncodeYAML() error = %v", err)
		}

		reloaded, err := LoadYAML[int](&buffer, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("LoadYAML() error = %v", err)
		}
		if got := ids[int](reloaded.AllChildren(1)); !reflect.DeepEqual(got, []int{2, 4}) {
			t.Errorf("Store.AllChildren() = %v, want %v", got, []int{2, 4})
		}
	})
}
