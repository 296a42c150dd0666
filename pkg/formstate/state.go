// Package formstate holds the live values of a modal form.
package formstate

import (
	"sort"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formmodal/pkg/mathexpr"
	"github.com/goliatone/go-formmodal/pkg/model"
)

// Reader exposes the current value of a mounted widget.
type Reader interface {
	Value() any
}

// State maps field names to values. Values are string, float64, bool or
// []string. It is safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	values map[string]any
}

// New seeds the state with a deep copy of prefill.
func New(prefill map[string]any) *State {
	return &State{values: Clone(prefill)}
}

// Init builds the state for a render pass. Extra data is applied first, then
// each field takes its carried value, its declared default, or the empty
// value for its type. Carried keys that are neither fields nor extra data are
// dropped.
func Init(fields []model.FieldDescriptor, carried, extra map[string]any) *State {
	values := Clone(extra)
	for _, field := range fields {
		if value, ok := carried[field.Field]; ok && value != nil {
			values[field.Field] = deepcopy.Copy(value)
			continue
		}
		if field.Value != nil {
			values[field.Field] = normalizeDefault(field, field.Value)
			continue
		}
		values[field.Field] = model.EmptyValue(field.Type)
	}
	return &State{values: values}
}

// Get returns the value stored for field.
func (s *State) Get(field string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[field]
	return value, ok
}

// Set stores value under field.
func (s *State) Set(field string, value any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[field] = value
}

// Merge copies every entry of values into the state.
func (s *State) Merge(values map[string]any) {
	if s == nil || len(values) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any, len(values))
	}
	for key, value := range values {
		s.values[key] = deepcopy.Copy(value)
	}
}

// Clear drops every value.
func (s *State) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any)
}

// Snapshot returns a deep copy of the values.
func (s *State) Snapshot() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.values)
}

// Keys lists stored field names in sorted order.
func (s *State) Keys() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Collect reads every mounted widget, coerces the raw value for the field
// type, stores it and returns a snapshot. Fields without a widget keep their
// current value.
func (s *State) Collect(fields []model.FieldDescriptor, widgets map[string]Reader) map[string]any {
	for _, field := range fields {
		reader, ok := widgets[field.Field]
		if !ok || reader == nil {
			continue
		}
		s.Set(field.Field, Coerce(field, reader.Value()))
	}
	return s.Snapshot()
}

// Coerce converts a raw widget value into the stored representation for
// field. Number fields parse leniently, or evaluate arithmetic when Math is
// set.
func Coerce(field model.FieldDescriptor, raw any) any {
	switch field.Kind() {
	case model.FieldTypeNumber:
		switch v := raw.(type) {
		case string:
			if field.Math {
				return mathexpr.Eval(v)
			}
			return mathexpr.Number(v)
		case nil:
			return float64(0)
		default:
			return model.ToFloat(v)
		}
	case model.FieldTypeCheckbox:
		return model.ToBool(raw)
	case model.FieldTypeCheckboxGroup, model.FieldTypeMultiSelect:
		return model.ToStrings(raw)
	}
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return model.Stringify(raw)
}

func normalizeDefault(field model.FieldDescriptor, value any) any {
	switch field.Kind() {
	case model.FieldTypeCheckboxGroup, model.FieldTypeMultiSelect:
		return model.ToStrings(value)
	case model.FieldTypeCheckbox:
		return model.ToBool(value)
	case model.FieldTypeNumber:
		if _, ok := value.(string); !ok {
			return model.ToFloat(value)
		}
	}
	return deepcopy.Copy(value)
}

// Clone deep-copies a value map. Nil maps clone to empty ones.
func Clone(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = deepcopy.Copy(value)
	}
	return out
}
