package model

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestApplyOverride_ReplacesKnownKeysAndKeepsExtras(t *testing.T) {
	t.Parallel()

	base := FieldDescriptor{
		Field:   "name",
		Title:   "Name",
		Type:    FieldTypeText,
		Options: []Option{{Value: "a"}},
	}
	got := ApplyOverride(base, map[string]any{
		"value":    "Ada",
		"readonly": true,
		"options":  []any{"x", map[string]any{"value": 2, "label": "Two"}},
		"tooltip":  "hi",
	})

	want := FieldDescriptor{
		Field:    "name",
		Title:    "Name",
		Type:     FieldTypeText,
		Value:    "Ada",
		Readonly: true,
		Options:  []Option{{Value: "x", Label: "x"}, {Value: "2", Label: "Two"}},
		Attrs:    map[string]any{"tooltip": "hi"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(FieldDescriptor{}, "OnChange")); diff != "" {
		t.Fatalf("override mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Option{{Value: "a"}}, base.Options); diff != "" {
		t.Fatalf("base descriptor mutated (-want +got):\n%s", diff)
	}
}

func TestModalConfigClone_IsIndependent(t *testing.T) {
	t.Parallel()

	cfg := &ModalConfig{
		Title:  "Edit",
		Fields: []FieldDescriptor{{Field: "a", Value: "1"}, {Field: "b"}},
	}
	clone := cfg.Clone()
	clone.Fields[0].Value = "changed"
	clone.Fields = append(clone.Fields, FieldDescriptor{Field: "c"})

	if cfg.Fields[0].Value != "1" || len(cfg.Fields) != 2 {
		t.Fatalf("original mutated through clone: %+v", cfg.Fields)
	}
	if (*ModalConfig)(nil).Clone() == nil {
		t.Fatalf("nil clone should produce an empty config")
	}
}

func TestDecodeConfig_FromDocument(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"title": "库存编辑",
		"onSubmit": "save",
		"config": [
			{"field": "email", "title": "Email", "required": true, "verify": "EMAIL"},
			{"field": "color", "type": "select", "options": ["red", {"value": "blue", "label": "Blue"}]},
			{"field": "lookup", "button": {"text": "...", "childModal": "picker"}},
			{"field": "inline", "button": {"childModal": {"title": "Child", "config": [{"field": "x"}]}}}
		]
	}`)
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg, err := DecodeConfig(doc)
	if err != nil {
		t.Fatalf("DecodeConfig returned error: %v", err)
	}

	if cfg.Title != "库存编辑" || cfg.SubmitHook != "save" {
		t.Fatalf("unexpected header: %+v", cfg)
	}
	if got := cfg.Fields[0].Verify.Pattern; got != "EMAIL" {
		t.Fatalf("verify pattern = %q", got)
	}
	wantOptions := []Option{{Value: "red", Label: "red"}, {Value: "blue", Label: "Blue"}}
	if diff := cmp.Diff(wantOptions, cfg.Fields[1].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Fields[2].Button.ChildModal.Name; got != "picker" {
		t.Fatalf("child name = %q", got)
	}
	child := cfg.Fields[3].Button.ChildModal.Config
	if child == nil || child.Title != "Child" || len(child.Fields) != 1 {
		t.Fatalf("inline child not decoded: %+v", child)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestModalConfigValidate_DuplicateFields(t *testing.T) {
	t.Parallel()

	cfg := &ModalConfig{Fields: []FieldDescriptor{{Field: "a"}, {Field: "a"}, {}}}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error for duplicate and empty keys")
	}
}

func TestFooterButtons_DefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	cfg := &ModalConfig{}
	got := cfg.FooterButtons()
	if len(got) != 2 || got[0].Action != ActionClose || got[1].Action != ActionSubmit {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if _, ok := cfg.FooterButton("submit"); !ok {
		t.Fatalf("expected submit button lookup to succeed")
	}
}

func TestHooksBind_ResolvesNamesAndReportsMissing(t *testing.T) {
	t.Parallel()

	errInvalid := errors.New("invalid")
	hooks := Hooks{
		Submit: map[string]SubmitFunc{
			"save": func(context.Context, map[string]any) (any, error) { return "ok", nil },
		},
		Verify: map[string]VerifyFunc{
			"even": func(any) error { return errInvalid },
		},
	}
	cfg := &ModalConfig{
		SubmitHook:     "save",
		BeforeShowHook: "prefill",
		Fields: []FieldDescriptor{
			{Field: "n", Verify: Verify{Hook: "even"}},
			{Field: "child", Button: &ButtonDescriptor{ChildModal: ChildRef{Config: &ModalConfig{SubmitHook: "nope"}}}},
		},
	}

	missing := hooks.Bind(cfg)

	if cfg.OnSubmit == nil {
		t.Fatalf("submit hook not bound")
	}
	if err := cfg.Fields[0].Verify.Func(1); !errors.Is(err, errInvalid) {
		t.Fatalf("verify hook not bound: %v", err)
	}
	want := []string{"beforeShow:prefill", "onSubmit:nope"}
	if diff := cmp.Diff(want, missing); diff != "" {
		t.Fatalf("missing hooks mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldTypeNormalize(t *testing.T) {
	t.Parallel()

	cases := map[FieldType]FieldType{
		"":              FieldTypeText,
		" Number ":      FieldTypeNumber,
		"multiselect":   FieldTypeMultiSelect,
		"multiSelect":   FieldTypeMultiSelect,
		"combobox":      FieldTypeSelect2,
		"checkboxgroup": FieldTypeCheckboxGroup,
		"rating":        "rating",
	}
	for in, want := range cases {
		if got := in.Normalize(); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
