package model

import (
	"context"
	"strings"
)

// FieldType tags the widget a field renders with.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypePassword      FieldType = "password"
	FieldTypeNumber        FieldType = "number"
	FieldTypeDate          FieldType = "date"
	FieldTypeTextarea      FieldType = "textarea"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypeCheckboxGroup FieldType = "checkbox-group"
	FieldTypeRadio         FieldType = "radio"
	FieldTypeSelect        FieldType = "select"
	FieldTypeSelect2       FieldType = "select2"
	FieldTypeMultiSelect   FieldType = "multiSelect"
)

var fieldTypeAliases = map[string]FieldType{
	"":               FieldTypeText,
	"input":          FieldTypeText,
	"string":         FieldTypeText,
	"integer":        FieldTypeNumber,
	"boolean":        FieldTypeCheckbox,
	"checkboxgroup":  FieldTypeCheckboxGroup,
	"checkbox_group": FieldTypeCheckboxGroup,
	"combobox":       FieldTypeSelect2,
	"multiselect":    FieldTypeMultiSelect,
	"multi-select":   FieldTypeMultiSelect,
}

// Normalize trims the tag and maps known aliases onto the canonical built-in
// identifiers. Unknown tags are returned trimmed so custom widgets still match.
func (t FieldType) Normalize() FieldType {
	trimmed := strings.TrimSpace(string(t))
	if alias, ok := fieldTypeAliases[strings.ToLower(trimmed)]; ok {
		return alias
	}
	for _, known := range []FieldType{
		FieldTypeText, FieldTypePassword, FieldTypeNumber, FieldTypeDate,
		FieldTypeTextarea, FieldTypeCheckbox, FieldTypeRadio, FieldTypeSelect,
		FieldTypeSelect2,
	} {
		if strings.EqualFold(trimmed, string(known)) {
			return known
		}
	}
	return FieldType(trimmed)
}

// IsMulti reports whether values of this type are string slices.
func (t FieldType) IsMulti() bool {
	switch t.Normalize() {
	case FieldTypeCheckboxGroup, FieldTypeMultiSelect:
		return true
	}
	return false
}

// HasOptions reports whether the type presents a fixed option list.
func (t FieldType) HasOptions() bool {
	switch t.Normalize() {
	case FieldTypeCheckboxGroup, FieldTypeRadio, FieldTypeSelect, FieldTypeSelect2, FieldTypeMultiSelect:
		return true
	}
	return false
}

// Hook signatures. Hooks receive copies of form values; mutating them has no
// effect on the live form state.
type (
	// BeforeShowFunc computes per-field overrides before a modal renders. The
	// returned map is keyed by field name; unmatched keys become extra data.
	BeforeShowFunc func(ctx context.Context, initData any) (map[string]any, error)
	// SubmitFunc receives validated form values. A non-nil result is handed
	// to whoever opened the modal.
	SubmitFunc func(ctx context.Context, values map[string]any) (any, error)
	// VerifyFunc validates a single value; a nil error means the value passes
	// and the error text becomes the validation message otherwise.
	VerifyFunc func(value any) error
	// ChangeFunc observes field edits after the form state has been updated.
	ChangeFunc func(value any, field string, values map[string]any)
	// ClickFunc runs for custom field or footer buttons.
	ClickFunc func(ctx context.Context, values map[string]any) error
)

// Option is one entry of a select, radio or checkbox-group field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Text returns the label, falling back to the value.
func (o Option) Text() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

// Verify describes the custom validation attached to a field. At most one of
// Func and Pattern is consulted; Func wins when both are set.
type Verify struct {
	// Pattern is a named pattern identifier (EMAIL, ID_CARD, ...) or a raw
	// regular expression.
	Pattern string `json:"pattern,omitempty"`
	// Hook names a verifier registered in Hooks.Verify.
	Hook string     `json:"hook,omitempty"`
	Func VerifyFunc `json:"-"`
}

// IsZero reports whether no validation is configured.
func (v Verify) IsZero() bool {
	return v.Func == nil && strings.TrimSpace(v.Pattern) == "" && strings.TrimSpace(v.Hook) == ""
}

// ChildRef points at the modal opened by a field button: either an inline
// configuration or the name of a registered one.
type ChildRef struct {
	Name   string
	Config *ModalConfig
}

// IsZero reports whether the reference points nowhere.
func (c ChildRef) IsZero() bool {
	return c.Config == nil && strings.TrimSpace(c.Name) == ""
}

// ButtonDescriptor is an action button rendered next to a field.
type ButtonDescriptor struct {
	Text       string    `json:"text,omitempty"`
	ChildModal ChildRef  `json:"childModal,omitempty"`
	ClickHook  string    `json:"onClick,omitempty"`
	OnClick    ClickFunc `json:"-"`
}

// Footer button actions understood by the modal.
const (
	ActionClose  = "close"
	ActionSubmit = "submit"
)

// FooterButton is a button rendered in the modal footer.
type FooterButton struct {
	Key       string    `json:"key"`
	Text      string    `json:"text,omitempty"`
	ClassName string    `json:"className,omitempty"`
	Action    string    `json:"action,omitempty"`
	Disabled  bool      `json:"disabled,omitempty"`
	ClickHook string    `json:"onClick,omitempty"`
	OnClick   ClickFunc `json:"-"`
}

// DefaultButtons returns the footer used when a configuration declares none.
func DefaultButtons() []FooterButton {
	return []FooterButton{
		{Key: "cancel", Text: "取消", ClassName: "btn btn-cancel", Action: ActionClose},
		{Key: "submit", Text: "提交", ClassName: "btn btn-submit", Action: ActionSubmit},
	}
}

// FieldDescriptor declares one form field.
type FieldDescriptor struct {
	Field       string            `json:"field"`
	Title       string            `json:"title,omitempty"`
	Type        FieldType         `json:"type,omitempty"`
	Value       any               `json:"value,omitempty"`
	Required    bool              `json:"required,omitempty"`
	Readonly    bool              `json:"readonly,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Math        bool              `json:"math,omitempty"`
	Rows        int               `json:"rows,omitempty"`
	Min         *float64          `json:"min,omitempty"`
	Max         *float64          `json:"max,omitempty"`
	Step        *float64          `json:"step,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Verify      Verify            `json:"verify,omitempty"`
	ChangeHook  string            `json:"onChange,omitempty"`
	OnChange    ChangeFunc        `json:"-"`
	Button      *ButtonDescriptor `json:"button,omitempty"`
	Attrs       map[string]any    `json:"attrs,omitempty"`
}

// Kind returns the normalised field type.
func (f FieldDescriptor) Kind() FieldType {
	return f.Type.Normalize()
}

// DisplayTitle returns the title used in labels and validation messages.
func (f FieldDescriptor) DisplayTitle() string {
	if strings.TrimSpace(f.Title) != "" {
		return f.Title
	}
	return f.Field
}

// Clone returns a copy whose slices and maps can be modified independently.
func (f FieldDescriptor) Clone() FieldDescriptor {
	if len(f.Options) > 0 {
		f.Options = append([]Option(nil), f.Options...)
	}
	if f.Button != nil {
		button := *f.Button
		f.Button = &button
	}
	if len(f.Attrs) > 0 {
		attrs := make(map[string]any, len(f.Attrs))
		for key, value := range f.Attrs {
			attrs[key] = value
		}
		f.Attrs = attrs
	}
	return f
}

// EmptyValue returns the value a field holds when neither carried form data
// nor a default supplies one.
func EmptyValue(t FieldType) any {
	switch t.Normalize() {
	case FieldTypeNumber:
		return float64(0)
	case FieldTypeCheckbox:
		return false
	case FieldTypeCheckboxGroup, FieldTypeMultiSelect:
		return []string{}
	default:
		return ""
	}
}
