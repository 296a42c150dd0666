// Package html presents modals as server-rendered HTML. The Host implements
// modal.Host, renders the current tree through a pongo2 template and feeds
// posted form values back into the mounted widgets.
package html

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formmodal/internal/loader"
	"github.com/goliatone/go-formmodal/pkg/model"
	"github.com/goliatone/go-formmodal/pkg/view"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

const (
	templateName = "modal"
	// ThemeAssetStylesheet is the go-theme asset key consulted for a
	// stylesheet URL when no explicit one is configured.
	ThemeAssetStylesheet = "formmodal.stylesheet"
)

// Option configures a Host.
type Option func(*Host)

// WithEngine replaces the template engine.
func WithEngine(engine *Engine) Option {
	return func(h *Host) {
		if engine != nil {
			h.engine = engine
		}
	}
}

// WithTheme applies a go-theme renderer configuration.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(h *Host) {
		h.theme = cfg
	}
}

// WithStylesheet loads the stylesheet from a file path or http(s) URL
// instead of the bundled one. Load failures are logged and the modal renders
// unstyled.
func WithStylesheet(location string) Option {
	return func(h *Host) {
		h.stylesheetPath = strings.TrimSpace(location)
	}
}

// WithAction sets the form's action URL.
func WithAction(url string) Option {
	return func(h *Host) {
		h.action = url
	}
}

// WithPolicy replaces the sanitizer applied to field descriptions.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(h *Host) {
		if policy != nil {
			h.policy = policy
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Host renders one modal instance to HTML.
type Host struct {
	engine         *Engine
	theme          *theme.RendererConfig
	policy         *bluemonday.Policy
	logger         *slog.Logger
	stylesheetPath string
	action         string

	styleOnce  sync.Once
	stylesheet string

	mu      sync.RWMutex
	tree    view.Tree
	widgets map[string]widgets.Widget
	order   []string
	open    bool
}

// New creates a Host using the bundled templates unless WithEngine is set.
func New(options ...Option) (*Host, error) {
	h := &Host{
		policy:  bluemonday.UGCPolicy(),
		logger:  slog.Default(),
		widgets: map[string]widgets.Widget{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if h.engine == nil {
		engine, err := NewEngine()
		if err != nil {
			return nil, err
		}
		h.engine = engine
	}
	return h, nil
}

func (h *Host) Attach(ctx context.Context, tree view.Tree) (widgets.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree = tree
	h.widgets = map[string]widgets.Widget{}
	h.order = nil
	return h, nil
}

// Mount implements widgets.Container.
func (h *Host) Mount(field string, w widgets.Widget) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.widgets[field]; exists {
		return fmt.Errorf("html: field %q mounted twice", field)
	}
	h.widgets[field] = w
	h.order = append(h.order, field)
	return nil
}

func (h *Host) Open(context.Context) error {
	h.mu.Lock()
	h.open = true
	h.mu.Unlock()
	return nil
}

func (h *Host) Close(context.Context) error {
	h.mu.Lock()
	h.open = false
	h.mu.Unlock()
	return nil
}

func (h *Host) Detach(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree = view.Tree{}
	h.widgets = map[string]widgets.Widget{}
	h.order = nil
	h.open = false
	return nil
}

// ShowErrors implements modal.ErrorReporter.
func (h *Host) ShowErrors(_ context.Context, messages []string) error {
	h.mu.Lock()
	h.tree.Errors = append([]string(nil), messages...)
	h.mu.Unlock()
	return nil
}

// IsOpen reports the visibility toggled by Open and Close.
func (h *Host) IsOpen() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.open
}

// Render writes the current modal markup to w. Field values come from the
// mounted widgets so unsaved input survives a re-render.
func (h *Host) Render(ctx context.Context, w io.Writer) error {
	_, err := h.render(ctx, w)
	return err
}

// HTML returns the current modal markup.
func (h *Host) HTML(ctx context.Context) (string, error) {
	return h.render(ctx, nil)
}

func (h *Host) render(ctx context.Context, w io.Writer) (string, error) {
	data := h.context(ctx)
	var out []io.Writer
	if w != nil {
		out = append(out, w)
	}
	rendered, err := h.engine.RenderTemplate(templateName, data, out...)
	if err != nil {
		return "", fmt.Errorf("html: render modal: %w", err)
	}
	return rendered, nil
}

func (h *Host) context(ctx context.Context) map[string]any {
	stylesheet := h.loadStylesheet(ctx)

	h.mu.RLock()
	defer h.mu.RUnlock()

	rows := make([]any, 0, len(h.tree.Rows))
	for _, row := range h.tree.Rows {
		if w, ok := h.widgets[row.Field]; ok {
			row = refresh(row, w.Value())
		}
		rows = append(rows, h.rowContext(row))
	}
	footer := make([]any, 0, len(h.tree.Footer))
	for _, button := range h.tree.Footer {
		footer = append(footer, map[string]any{
			"key":        button.Key,
			"text":       button.Text,
			"class_name": button.ClassName,
			"disabled":   button.Disabled,
		})
	}
	errs := make([]any, 0, len(h.tree.Errors))
	for _, message := range h.tree.Errors {
		errs = append(errs, message)
	}

	return map[string]any{
		"id":         h.tree.ID,
		"title":      h.tree.Title,
		"depth":      h.tree.Depth,
		"open":       h.open,
		"action":     h.action,
		"rows":       rows,
		"footer":     footer,
		"errors":     errs,
		"stylesheet": stylesheet,
		"theme":      themeContext(h.theme),
	}
}

func (h *Host) rowContext(row view.Row) map[string]any {
	options := make([]any, 0, len(row.Options))
	for _, opt := range row.Options {
		options = append(options, map[string]any{
			"value":    opt.Value,
			"label":    opt.Label,
			"selected": opt.Selected,
		})
	}
	out := map[string]any{
		"field":       row.Field,
		"title":       row.Title,
		"kind":        string(row.Kind),
		"widget":      row.Widget,
		"required":    row.Required,
		"readonly":    row.Readonly,
		"text":        row.Text,
		"checked":     model.ToBool(row.Value),
		"placeholder": row.Placeholder,
		"label":       row.Label,
		"description": strings.TrimSpace(h.policy.Sanitize(row.Description)),
		"rows":        row.Rows,
		"options":     options,
		"input_type":  inputType(row),
		"select":      row.Kind.HasOptions(),
		"multiple":    row.Kind == model.FieldTypeMultiSelect,
	}
	if row.Rows <= 0 {
		out["rows"] = 3
	}
	if row.Button != nil {
		out["button"] = map[string]any{"text": row.Button.Text, "child": row.Button.Child}
	}
	return out
}

// refresh replaces the row's value with the widget's current one.
func refresh(row view.Row, value any) view.Row {
	row.Value = value
	row.Text = ""
	selected := map[string]bool{}
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			selected[item] = true
		}
	case bool:
	default:
		row.Text = model.Stringify(v)
		if row.Text != "" {
			selected[row.Text] = true
		}
	}
	options := make([]view.Option, len(row.Options))
	for idx, opt := range row.Options {
		opt.Selected = selected[opt.Value]
		options[idx] = opt
	}
	row.Options = options
	return row
}

func inputType(row view.Row) string {
	switch row.Kind {
	case model.FieldTypePassword:
		return "password"
	case model.FieldTypeDate:
		return "date"
	}
	return "text"
}

func (h *Host) loadStylesheet(ctx context.Context) string {
	h.styleOnce.Do(func() {
		location := h.stylesheetPath
		if location == "" && h.theme != nil && h.theme.AssetURL != nil {
			location = strings.TrimSpace(h.theme.AssetURL(ThemeAssetStylesheet))
		}
		if location == "" {
			h.stylesheet = defaultStylesheet()
			return
		}
		var (
			data []byte
			err  error
		)
		if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
			data, err = loader.HTTP(ctx, http.DefaultClient, location, 5*time.Second)
		} else {
			data, err = loader.File(ctx, location)
		}
		if err != nil {
			h.logger.Warn("html: stylesheet unavailable", "location", location, "err", err)
			return
		}
		h.stylesheet = string(data)
	})
	return h.stylesheet
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":           cfg.Theme,
		"variant":        cfg.Variant,
		"css_vars_style": cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(".modal-mask {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
