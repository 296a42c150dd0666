package openapi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formmodal/internal/loader"
	"github.com/goliatone/go-formmodal/pkg/model"
	"github.com/goliatone/go-formmodal/pkg/registry"
)

func loadInventory(t *testing.T) *Source {
	t.Helper()
	src, err := LoadSource(context.Background(), filepath.Join("testdata", "inventory.yaml"))
	if err != nil {
		t.Fatalf("load source: %v", err)
	}
	return src
}

func TestSource_ListOperations(t *testing.T) {
	t.Parallel()

	names, err := loadInventory(t).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"createItem", "getItem"}, names); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestSource_OpenDerivesConfig(t *testing.T) {
	t.Parallel()

	module, err := loadInventory(t).Open(context.Background(), "createItem")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	cfg, export, ok := registry.Extract(module, "createItem")
	if !ok || export != "default" {
		t.Fatalf("extract = %v %q", ok, export)
	}
	if cfg.Title != "新建库存" || cfg.SubmitHook != "saveItem" {
		t.Fatalf("title/submit = %q/%q", cfg.Title, cfg.SubmitHook)
	}

	type summary struct {
		Field    string
		Title    string
		Type     model.FieldType
		Required bool
		Pattern  string
		Options  int
	}
	got := make([]summary, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		got = append(got, summary{f.Field, f.Title, f.Type, f.Required, f.Verify.Pattern, len(f.Options)})
	}
	want := []summary{
		{Field: "name", Title: "名称", Type: model.FieldTypeText, Required: true},
		{Field: "qty", Title: "数量", Type: model.FieldTypeNumber, Required: true},
		{Field: "code", Type: model.FieldTypeText, Pattern: "POSTAL_CODE"},
		{Field: "contact", Title: "邮箱", Type: model.FieldTypeText, Pattern: "EMAIL"},
		{Field: "level", Type: model.FieldTypeSelect, Options: 2},
		{Field: "note", Type: model.FieldTypeTextarea},
		{Field: "tags", Type: model.FieldTypeCheckboxGroup, Options: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	qty, _ := cfg.Field("qty")
	if model.ToFloat(qty.Value) != 1 || qty.Min == nil || *qty.Min != 0 {
		t.Fatalf("qty default/min = %v/%v", qty.Value, qty.Min)
	}
}

func TestSource_OperationWithoutBody(t *testing.T) {
	t.Parallel()

	module, err := loadInventory(t).Open(context.Background(), "getItem")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	cfg, _, ok := registry.Extract(module, "getItem")
	if !ok {
		t.Fatalf("expected config export")
	}
	if cfg.Title != "getItem" || len(cfg.Fields) != 0 {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestSource_UnknownOperationIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := loadInventory(t).Open(context.Background(), "deleteItem")
	if !loader.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSource_BacksRegistry(t *testing.T) {
	t.Parallel()

	src := loadInventory(t)
	reg := registry.New(registry.WithSource(src), registry.WithCatalog(src))
	cfg, ok := reg.Get(context.Background(), "createItem")
	if !ok || len(cfg.Fields) != 7 {
		t.Fatalf("registry lookup = %v %+v", ok, cfg)
	}
}

func TestNewSource_RejectsEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	if _, err := NewSource(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := NewSource(context.Background(), []byte("{not yaml")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOperationName(t *testing.T) {
	t.Parallel()

	if got := operationName("POST", "/items/{id}"); got != "postItemsId" {
		t.Fatalf("operationName = %q", got)
	}
}

func TestLoadSource_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadSource(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) && !loader.IsNotFound(err) {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestLoadSource_ValidatesDocument(t *testing.T) {
	t.Parallel()

	src, err := LoadSource(context.Background(), filepath.Join("testdata", "inventory.yaml"), WithValidation(true), WithName("inventory"))
	if err != nil {
		t.Fatalf("load with validation: %v", err)
	}
	if src.Name() != "inventory" {
		t.Fatalf("name = %q", src.Name())
	}
}
