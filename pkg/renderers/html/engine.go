package html

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	json "github.com/goccy/go-json"
	"github.com/iancoleman/strcase"
)

const templateExt = ".tpl"

// EngineOption configures an Engine before construction.
type EngineOption func(*Engine)

// WithBaseDir looks up templates in dir before the bundled ones, so a
// directory holding only modal.tpl overrides the markup and nothing else.
func WithBaseDir(dir string) EngineOption {
	return func(e *Engine) {
		e.baseDir = strings.TrimSpace(dir)
	}
}

// Engine renders the modal templates and caches parsed files.
type Engine struct {
	baseDir string

	mu          sync.RWMutex
	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
}

// NewEngine constructs an Engine over the bundled templates.
func NewEngine(options ...EngineOption) (*Engine, error) {
	e := &Engine{templates: make(map[string]*pongo2.Template)}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}

	var loaders []pongo2.TemplateLoader
	if e.baseDir != "" {
		info, err := os.Stat(e.baseDir)
		if err != nil {
			return nil, fmt.Errorf("html: template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("html: template dir %q is not a directory", e.baseDir)
		}
		local, err := pongo2.NewLocalFileSystemLoader(e.baseDir)
		if err != nil {
			return nil, fmt.Errorf("html: create local loader: %w", err)
		}
		loaders = append(loaders, local)
	}
	loaders = append(loaders, pongo2.NewFSLoader(Templates()))

	e.templateSet = pongo2.NewSet("formmodal", loaders...)
	registerFilters()
	return e, nil
}

// RenderTemplate executes the named template file and copies the result to
// every writer in out.
func (e *Engine) RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("html: engine is nil")
	}
	if !strings.HasSuffix(name, templateExt) {
		name += templateExt
	}
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}
	viewContext, err := convertMap(data)
	if err != nil {
		return "", fmt.Errorf("html: convert data: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", fmt.Errorf("html: execute template %q: %w", name, err)
	}
	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

// convertMap turns the host context into values pongo2 can walk. Anything
// that is not a scalar, map or []any goes through JSON.
func convertMap(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	case map[string]any:
		return convertMap(v)
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return convertValue(decoded)
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("field_id") {
			_ = pongo2.RegisterFilter("field_id", filterFieldID)
		}
	})
}

// filterFieldID builds the DOM id of a field row: {{ row.field|field_id:id }}.
func filterFieldID(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(FieldID(param.String(), in.String())), nil
}

// FieldID joins a modal id and a field name into an id attribute value.
// Field names are kebab-cased so dotted or spaced names stay addressable.
func FieldID(modalID, field string) string {
	words := strings.Fields(strings.NewReplacer(".", " ", "[", " ", "]", " ").Replace(field))
	slug := strcase.ToKebab(strings.Join(words, " "))
	if slug == "" {
		slug = "field"
	}
	if modalID == "" {
		return slug
	}
	return modalID + "-" + slug
}
