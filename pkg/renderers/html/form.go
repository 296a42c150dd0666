package html

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/goliatone/go-formmodal/pkg/modal"
	"github.com/goliatone/go-formmodal/pkg/model"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// Form keys carrying the pressed control.
const (
	FormKeyAction = "_action"
	FormKeyButton = "_button"
)

// ApplyForm feeds posted values into the mounted widgets. Only values that
// differ from the widget's current one are applied, so change hooks fire for
// real edits only. Readonly fields are skipped.
func (h *Host) ApplyForm(form url.Values) error {
	h.mu.RLock()
	order := append([]string(nil), h.order...)
	mounted := make(map[string]widgets.Widget, len(h.widgets))
	for field, w := range h.widgets {
		mounted[field] = w
	}
	h.mu.RUnlock()

	var errs []error
	for _, field := range order {
		w := mounted[field]
		descriptor := w.Descriptor()
		if descriptor.Readonly {
			continue
		}
		raw, ok := formValue(descriptor, form)
		if !ok || sameValue(descriptor.Kind(), w.Value(), raw) {
			continue
		}
		if err := w.Input(raw); err != nil {
			errs = append(errs, fmt.Errorf("html: field %q: %w", field, err))
		}
	}
	return errors.Join(errs...)
}

func formValue(field model.FieldDescriptor, form url.Values) (any, bool) {
	switch kind := field.Kind(); {
	case kind == model.FieldTypeCheckbox:
		return form.Get(field.Field) != "", true
	case kind.IsMulti():
		values := form[field.Field]
		if values == nil {
			values = []string{}
		}
		return values, true
	}
	if _, ok := form[field.Field]; !ok {
		return nil, false
	}
	return form.Get(field.Field), true
}

func sameValue(kind model.FieldType, current, next any) bool {
	switch {
	case kind == model.FieldTypeCheckbox:
		return model.ToBool(current) == next
	case kind.IsMulti():
		want := slices.Clone(next.([]string))
		got := model.ToStrings(current)
		slices.Sort(want)
		slices.Sort(got)
		return slices.Equal(want, got)
	}
	return model.Stringify(current) == next
}

// Dispatch applies a posted form to m and runs the control that submitted
// it: a row button named by _button or a footer button named by _action.
// Validation failures are reported on the host and are not returned.
func (h *Host) Dispatch(ctx context.Context, m *modal.Modal, form url.Values) error {
	if err := h.ApplyForm(form); err != nil {
		return err
	}
	if field := form.Get(FormKeyButton); field != "" {
		w, ok := m.Widget(field)
		if !ok {
			return fmt.Errorf("html: no widget for button %q", field)
		}
		return w.Press(ctx)
	}
	key := form.Get(FormKeyAction)
	if key == "" {
		return nil
	}
	err := m.Action(ctx, key)
	var verr *modal.ValidationError
	if errors.As(err, &verr) {
		return nil
	}
	return err
}
