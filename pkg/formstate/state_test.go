package formstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formmodal/pkg/model"
)

type staticReader struct{ value any }

func (r staticReader) Value() any { return r.value }

func TestInit_PrecedenceCarriedDefaultEmpty(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDescriptor{
		{Field: "name", Value: "default"},
		{Field: "qty", Type: model.FieldTypeNumber, Value: 3},
		{Field: "agree", Type: model.FieldTypeCheckbox},
		{Field: "tags", Type: model.FieldTypeCheckboxGroup, Value: []any{"a"}},
		{Field: "note"},
	}
	carried := map[string]any{"name": "carried", "stale": "drop me"}
	extra := map[string]any{"id": "42"}

	state := Init(fields, carried, extra)

	want := map[string]any{
		"id":    "42",
		"name":  "carried",
		"qty":   float64(3),
		"agree": false,
		"tags":  []string{"a"},
		"note":  "",
	}
	if diff := cmp.Diff(want, state.Snapshot()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	t.Parallel()

	state := New(map[string]any{"tags": []string{"a", "b"}})
	snap := state.Snapshot()
	snap["tags"].([]string)[0] = "z"
	snap["new"] = true

	got, _ := state.Get("tags")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("snapshot aliased live state (-want +got):\n%s", diff)
	}
	if _, ok := state.Get("new"); ok {
		t.Fatalf("snapshot key leaked into state")
	}
}

func TestCollect_CoercesByType(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDescriptor{
		{Field: "qty", Type: model.FieldTypeNumber},
		{Field: "total", Type: model.FieldTypeNumber, Math: true},
		{Field: "bad", Type: model.FieldTypeNumber},
		{Field: "agree", Type: model.FieldTypeCheckbox},
		{Field: "colors", Type: model.FieldTypeMultiSelect},
		{Field: "name"},
		{Field: "untouched"},
	}
	state := Init(fields, map[string]any{"untouched": "keep"}, nil)

	got := state.Collect(fields, map[string]Reader{
		"qty":    staticReader{"12.5kg"},
		"total":  staticReader{"2*(3+4)"},
		"bad":    staticReader{"abc"},
		"agree":  staticReader{true},
		"colors": staticReader{[]any{"red", "blue"}},
		"name":   staticReader{"Ada"},
	})

	want := map[string]any{
		"qty":       12.5,
		"total":     float64(14),
		"bad":       float64(0),
		"agree":     true,
		"colors":    []string{"red", "blue"},
		"name":      "Ada",
		"untouched": "keep",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collect mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_MathFieldEvaluatesExpression(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDescriptor{{Field: "total", Type: model.FieldTypeNumber, Math: true}}
	cases := map[string]float64{
		"(5+2)/3": 7.0 / 3,
		"(5)":     5,
		"((7))":   7,
		"1/0":     0,
	}
	for expr, want := range cases {
		state := Init(fields, nil, nil)
		got := state.Collect(fields, map[string]Reader{"total": staticReader{expr}})
		if diff := cmp.Diff(want, got["total"], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Fatalf("Collect(%q) mismatch (-want +got):\n%s", expr, diff)
		}
	}
}

func TestMergeAndClear(t *testing.T) {
	t.Parallel()

	state := New(nil)
	state.Merge(map[string]any{"a": 1})
	state.Set("b", "x")
	if diff := cmp.Diff([]string{"a", "b"}, state.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	state.Clear()
	if len(state.Keys()) != 0 {
		t.Fatalf("expected empty state after Clear")
	}
}
