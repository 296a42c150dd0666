package widgets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formmodal/pkg/model"
)

// AttrWidget is the descriptor attribute that pins a widget explicitly.
const AttrWidget = "widget"

// Matcher decides whether a widget should handle a field whose type tag has
// no registered constructor.
type Matcher func(field model.FieldDescriptor) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry maps type tags to widget constructors. Resolution order: the
// explicit `widget` attribute, the field type, then registered matchers by
// priority (ties fall back to registration order), then text.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	rules        []rule
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *Registry {
	reg := &Registry{constructors: make(map[string]Constructor)}
	reg.registerBuiltins()
	return reg
}

// Register binds a constructor to a type tag, replacing any previous one.
func (r *Registry) Register(name string, ctor Constructor) {
	if r == nil || ctor == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[trimmed] = ctor
}

// RegisterMatcher adds a fallback rule resolving to the named widget. Higher
// priority values take precedence.
func (r *Registry) RegisterMatcher(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Names lists registered widget names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the widget name for a field.
func (r *Registry) Resolve(field model.FieldDescriptor) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if explicit := explicitWidget(field); explicit != "" {
		if _, ok := r.constructors[explicit]; ok {
			return explicit
		}
	}
	kind := string(field.Kind())
	if _, ok := r.constructors[kind]; ok {
		return kind
	}
	if len(r.rules) > 0 {
		rules := append([]rule(nil), r.rules...)
		sort.SliceStable(rules, func(i, j int) bool {
			if rules[i].priority == rules[j].priority {
				return rules[i].order < rules[j].order
			}
			return rules[i].priority > rules[j].priority
		})
		for _, entry := range rules {
			if _, ok := r.constructors[entry.name]; ok && entry.match(field) {
				return entry.name
			}
		}
	}
	return string(model.FieldTypeText)
}

// Render builds the widget for a field bound to the supplied handlers.
func (r *Registry) Render(field model.FieldDescriptor, value any, onChange ChangeHandler, onButton ButtonHandler) (Widget, error) {
	name := r.Resolve(field)
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("widgets: no constructor for %q", name)
	}
	w, err := ctor(Params{Field: field, Value: value, OnChange: onChange, OnButton: onButton})
	if err != nil {
		return nil, fmt.Errorf("widgets: render %q: %w", field.Field, err)
	}
	return w, nil
}

// Decorate implements model.Decorator, recording the resolved widget in each
// field's `widget` attribute when it is not already set.
func (r *Registry) Decorate(cfg *model.ModalConfig) error {
	if r == nil || cfg == nil {
		return nil
	}
	for idx := range cfg.Fields {
		field := &cfg.Fields[idx]
		if explicitWidget(*field) != "" {
			continue
		}
		if field.Attrs == nil {
			field.Attrs = make(map[string]any)
		}
		field.Attrs[AttrWidget] = r.Resolve(*field)
	}
	return nil
}

func explicitWidget(field model.FieldDescriptor) string {
	if field.Attrs == nil {
		return ""
	}
	if name, ok := field.Attrs[AttrWidget].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}

func (r *Registry) registerBuiltins() {
	for _, kind := range []model.FieldType{
		model.FieldTypeText,
		model.FieldTypePassword,
		model.FieldTypeNumber,
		model.FieldTypeDate,
		model.FieldTypeTextarea,
	} {
		r.Register(string(kind), newText)
	}
	r.Register(string(model.FieldTypeCheckbox), newCheckbox)
	r.Register(string(model.FieldTypeRadio), newChoice)
	r.Register(string(model.FieldTypeSelect), newChoice)
	r.Register(string(model.FieldTypeSelect2), newChoice)
	r.Register(string(model.FieldTypeCheckboxGroup), newMulti)
	r.Register(string(model.FieldTypeMultiSelect), newMulti)

	r.RegisterMatcher(string(model.FieldTypeNumber), 60, func(field model.FieldDescriptor) bool {
		return field.Math
	})
	r.RegisterMatcher(string(model.FieldTypeSelect), 50, func(field model.FieldDescriptor) bool {
		return len(field.Options) > 0
	})
}
