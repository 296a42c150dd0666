package widgets

import (
	"fmt"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/goliatone/go-formmodal/pkg/model"
)

// textWidget backs text, password, date, textarea and number fields. Numbers
// stay textual until submit so arithmetic can be typed into math fields.
type textWidget struct {
	base
	value string
}

func newText(p Params) (Widget, error) {
	w := &textWidget{}
	w.init(p)
	w.SetValue(p.Value)
	return w, nil
}

func (w *textWidget) Mount(c Container) error { return mount(c, w) }

func (w *textWidget) Value() any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value
}

func (w *textWidget) SetValue(value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = model.Stringify(value)
}

func (w *textWidget) Input(raw any) error {
	w.mu.Lock()
	if err := w.guard(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.value = model.Stringify(raw)
	value := w.value
	w.mu.Unlock()
	w.notify(value)
	return nil
}

type checkboxWidget struct {
	base
	checked bool
}

func newCheckbox(p Params) (Widget, error) {
	w := &checkboxWidget{}
	w.init(p)
	w.SetValue(p.Value)
	return w, nil
}

func (w *checkboxWidget) Mount(c Container) error { return mount(c, w) }

func (w *checkboxWidget) Value() any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.checked
}

func (w *checkboxWidget) SetValue(value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.checked = model.ToBool(value)
}

func (w *checkboxWidget) Input(raw any) error {
	w.mu.Lock()
	if err := w.guard(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.checked = model.ToBool(raw)
	checked := w.checked
	w.mu.Unlock()
	w.notify(checked)
	return nil
}

// choiceWidget backs radio, select and select2. Input must name a declared
// option; the empty string clears the selection.
type choiceWidget struct {
	base
	selected string
}

func newChoice(p Params) (Widget, error) {
	w := &choiceWidget{}
	w.init(p)
	w.SetValue(p.Value)
	return w, nil
}

func (w *choiceWidget) Mount(c Container) error { return mount(c, w) }

func (w *choiceWidget) Value() any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.selected
}

func (w *choiceWidget) SetValue(value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = model.Stringify(value)
}

func (w *choiceWidget) Input(raw any) error {
	value := model.Stringify(raw)
	w.mu.Lock()
	if err := w.guard(); err != nil {
		w.mu.Unlock()
		return err
	}
	if value != "" && !hasOption(w.field.Options, value) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s=%q", ErrUnknownOption, w.field.Field, value)
	}
	w.selected = value
	w.mu.Unlock()
	w.notify(value)
	return nil
}

// Search ranks the field's options against query by fuzzy match on their
// labels. An empty query returns every option.
func (w *choiceWidget) Search(query string) []model.Option {
	return SearchOptions(w.field.Options, query)
}

// multiWidget backs checkbox-group and multiSelect. Input accepts the full
// selection as a list, or a single option value to toggle.
type multiWidget struct {
	base
	selected []string
}

func newMulti(p Params) (Widget, error) {
	w := &multiWidget{}
	w.init(p)
	w.SetValue(p.Value)
	return w, nil
}

func (w *multiWidget) Mount(c Container) error { return mount(c, w) }

func (w *multiWidget) Value() any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string{}, w.selected...)
}

func (w *multiWidget) SetValue(value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = w.ordered(model.ToStrings(value))
}

func (w *multiWidget) Input(raw any) error {
	w.mu.Lock()
	if err := w.guard(); err != nil {
		w.mu.Unlock()
		return err
	}
	var next []string
	var reported any
	switch v := raw.(type) {
	case string:
		if !hasOption(w.field.Options, v) {
			w.mu.Unlock()
			return fmt.Errorf("%w: %s=%q", ErrUnknownOption, w.field.Field, v)
		}
		if idx := slices.Index(w.selected, v); idx >= 0 {
			next = slices.Delete(append([]string{}, w.selected...), idx, idx+1)
		} else {
			next = append(append([]string{}, w.selected...), v)
		}
		reported = v
	default:
		values := model.ToStrings(raw)
		for _, value := range values {
			if !hasOption(w.field.Options, value) {
				w.mu.Unlock()
				return fmt.Errorf("%w: %s=%q", ErrUnknownOption, w.field.Field, value)
			}
		}
		next = values
		reported = append([]string{}, values...)
	}
	w.selected = w.ordered(next)
	if w.field.Kind() == model.FieldTypeCheckboxGroup {
		reported = append([]string{}, w.selected...)
	}
	w.mu.Unlock()
	w.notify(reported)
	return nil
}

// ordered sorts values by option declaration order; values that are not
// options keep their relative order at the end.
func (w *multiWidget) ordered(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, opt := range w.field.Options {
		if slices.Contains(values, opt.Value) {
			out = append(out, opt.Value)
			seen[opt.Value] = struct{}{}
		}
	}
	for _, value := range values {
		if _, ok := seen[value]; !ok {
			out = append(out, value)
			seen[value] = struct{}{}
		}
	}
	return out
}

// hasOption accepts any value when the field declares no options.
func hasOption(options []model.Option, value string) bool {
	if len(options) == 0 {
		return true
	}
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

type optionSource []model.Option

func (o optionSource) String(i int) string { return o[i].Text() }
func (o optionSource) Len() int            { return len(o) }

// SearchOptions fuzzy-matches query against option labels, best match first.
func SearchOptions(options []model.Option, query string) []model.Option {
	if query == "" {
		return append([]model.Option(nil), options...)
	}
	matches := fuzzy.FindFrom(query, optionSource(options))
	out := make([]model.Option, 0, len(matches))
	for _, match := range matches {
		out = append(out, options[match.Index])
	}
	return out
}
