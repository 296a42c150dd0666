// Package openapi derives modal configurations from OpenAPI 3 operations so
// a published API description can back the configuration registry. Each
// operation becomes a modal named by its operationId with one field per
// request-body property.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/iancoleman/strcase"

	"github.com/goliatone/go-formmodal/internal/loader"
	"github.com/goliatone/go-formmodal/pkg/model"
	"github.com/goliatone/go-formmodal/pkg/registry"
)

// Vendor extensions understood on operations and schemas.
const (
	ExtOrder  = "x-modal-order"
	ExtType   = "x-modal-type"
	ExtVerify = "x-modal-verify"
	ExtSubmit = "x-modal-submit"
	ExtTitle  = "x-modal-title"
)

// Option configures a Source.
type Option func(*Source)

// WithName overrides the name reported to the registry.
func WithName(name string) Option {
	return func(s *Source) {
		if name != "" {
			s.name = name
		}
	}
}

// WithValidation validates the document after loading.
func WithValidation(enabled bool) Option {
	return func(s *Source) {
		s.validate = enabled
	}
}

// Source implements registry.Source and registry.Catalog over one document.
type Source struct {
	name       string
	validate   bool
	operations map[string]*openapi3.Operation
}

var (
	_ registry.Source  = (*Source)(nil)
	_ registry.Catalog = (*Source)(nil)
)

// NewSource parses an OpenAPI 3 document from JSON or YAML bytes.
func NewSource(ctx context.Context, data []byte, options ...Option) (*Source, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	s := &Source{name: "openapi", operations: map[string]*openapi3.Operation{}}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	docLoader := &openapi3.Loader{Context: ctx}
	doc, err := docLoader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if s.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations() {
				if op == nil {
					continue
				}
				id := op.OperationID
				if id == "" {
					id = operationName(method, path)
				}
				s.operations[id] = op
			}
		}
	}
	return s, nil
}

// LoadSource reads the document from a file path or http(s) URL.
func LoadSource(ctx context.Context, location string, options ...Option) (*Source, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		data, err = loader.HTTP(ctx, http.DefaultClient, location, 10*time.Second)
	} else {
		data, err = loader.File(ctx, location)
	}
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", location, err)
	}
	return NewSource(ctx, data, options...)
}

func (s *Source) Name() string { return s.name }

// Open returns the modal derived from the operation with the given
// operationId. Unknown operations are reported as not found.
func (s *Source) Open(ctx context.Context, name string) (registry.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	op, ok := s.operations[name]
	if !ok {
		return nil, fmt.Errorf("openapi: operation %q: %w", name, loader.ErrNotFound)
	}
	return registry.Module{"default": Config(name, op)}, nil
}

// List implements registry.Catalog with the operation IDs.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.operations))
	for id := range s.operations {
		names = append(names, id)
	}
	sort.Strings(names)
	return names, nil
}

// Config derives a modal configuration from an operation.
func Config(id string, op *openapi3.Operation) *model.ModalConfig {
	cfg := &model.ModalConfig{Title: op.Summary}
	if title := stringExt(op.Extensions, ExtTitle); title != "" {
		cfg.Title = title
	}
	if cfg.Title == "" {
		cfg.Title = id
	}
	cfg.SubmitHook = stringExt(op.Extensions, ExtSubmit)

	schema := requestSchema(op.RequestBody)
	if schema == nil {
		return cfg
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	for _, name := range orderedProperties(schema.Properties) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field := fieldFromSchema(name, ref.Value)
		field.Required = required[name]
		cfg.Fields = append(cfg.Fields, field)
	}
	return cfg
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// orderedProperties sorts by x-modal-order, then name. Properties without an
// order come after ordered ones.
func orderedProperties(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	order := func(name string) (float64, bool) {
		ref := props[name]
		if ref == nil || ref.Value == nil {
			return 0, false
		}
		value, ok := ref.Value.Extensions[ExtOrder]
		if !ok {
			return 0, false
		}
		return model.ToFloat(value), true
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, hasI := order(names[i])
		oj, hasJ := order(names[j])
		switch {
		case hasI && hasJ && oi != oj:
			return oi < oj
		case hasI != hasJ:
			return hasI
		}
		return names[i] < names[j]
	})
	return names
}

func fieldFromSchema(name string, schema *openapi3.Schema) model.FieldDescriptor {
	field := model.FieldDescriptor{
		Field:       name,
		Title:       schema.Title,
		Description: schema.Description,
		Readonly:    schema.ReadOnly,
		Value:       schema.Default,
		Min:         schema.Min,
		Max:         schema.Max,
	}

	enum := schema.Enum
	if schema.Type.Is(openapi3.TypeArray) && schema.Items != nil && schema.Items.Value != nil {
		enum = schema.Items.Value.Enum
	}
	for _, value := range enum {
		text := model.Stringify(value)
		field.Options = append(field.Options, model.Option{Value: text, Label: text})
	}

	field.Type = fieldType(schema, len(enum) > 0)
	if override := stringExt(schema.Extensions, ExtType); override != "" {
		field.Type = model.FieldType(override).Normalize()
	}

	switch {
	case stringExt(schema.Extensions, ExtVerify) != "":
		field.Verify.Pattern = stringExt(schema.Extensions, ExtVerify)
	case schema.Pattern != "":
		field.Verify.Pattern = schema.Pattern
	case schema.Format == "email":
		field.Verify.Pattern = "EMAIL"
	case schema.Format == "uri" || schema.Format == "url":
		field.Verify.Pattern = "URL"
	}
	return field
}

func fieldType(schema *openapi3.Schema, hasEnum bool) model.FieldType {
	types := schema.Type
	switch {
	case types.Is(openapi3.TypeArray):
		if hasEnum {
			return model.FieldTypeCheckboxGroup
		}
		return model.FieldTypeMultiSelect
	case hasEnum:
		return model.FieldTypeSelect
	case types.Is(openapi3.TypeBoolean):
		return model.FieldTypeCheckbox
	case types.Is(openapi3.TypeInteger), types.Is(openapi3.TypeNumber):
		return model.FieldTypeNumber
	}
	switch schema.Format {
	case "date", "date-time":
		return model.FieldTypeDate
	case "password":
		return model.FieldTypePassword
	case "textarea":
		return model.FieldTypeTextarea
	}
	return model.FieldTypeText
}

// operationName derives a name for operations without an operationId:
// POST /items/{id} becomes postItemsId.
func operationName(method, path string) string {
	words := strings.FieldsFunc(strings.ToLower(method)+" "+path, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strcase.ToLowerCamel(strings.Join(words, " "))
}

func stringExt(extensions map[string]any, key string) string {
	value, ok := extensions[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
