package model

import (
	"errors"
	"fmt"
	"strings"
)

// ModalConfig is the declarative description of one modal form.
type ModalConfig struct {
	Title   string            `json:"title,omitempty"`
	Fields  []FieldDescriptor `json:"config"`
	Buttons []FooterButton    `json:"buttons,omitempty"`

	BeforeShowHook string `json:"beforeShow,omitempty"`
	SubmitHook     string `json:"onSubmit,omitempty"`

	BeforeShow BeforeShowFunc `json:"-"`
	OnSubmit   SubmitFunc     `json:"-"`
}

// Clone returns a copy of the configuration. Field descriptors and buttons are
// copied so overrides applied to the clone never reach the original. Nil
// configs clone to an empty configuration.
func (c *ModalConfig) Clone() *ModalConfig {
	if c == nil {
		return &ModalConfig{}
	}
	out := *c
	if c.Fields != nil {
		out.Fields = make([]FieldDescriptor, len(c.Fields))
		for idx, field := range c.Fields {
			out.Fields[idx] = field.Clone()
		}
	}
	if c.Buttons != nil {
		out.Buttons = append([]FooterButton(nil), c.Buttons...)
	}
	return &out
}

// Field looks up a descriptor by field name.
func (c *ModalConfig) Field(name string) (FieldDescriptor, bool) {
	if c == nil {
		return FieldDescriptor{}, false
	}
	for _, field := range c.Fields {
		if field.Field == name {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

// FooterButtons returns the configured footer or the default cancel/submit
// pair.
func (c *ModalConfig) FooterButtons() []FooterButton {
	if c == nil || len(c.Buttons) == 0 {
		return DefaultButtons()
	}
	return append([]FooterButton(nil), c.Buttons...)
}

// FooterButton finds a footer button by key.
func (c *ModalConfig) FooterButton(key string) (FooterButton, bool) {
	for _, button := range c.FooterButtons() {
		if button.Key == key {
			return button, true
		}
	}
	return FooterButton{}, false
}

// HasContent reports whether the configuration declares anything to render.
func (c *ModalConfig) HasContent() bool {
	return c != nil && (len(c.Fields) > 0 || strings.TrimSpace(c.Title) != "" || c.OnSubmit != nil || c.SubmitHook != "")
}

// Validate checks structural invariants: every field has a key and keys are
// unique within the configuration.
func (c *ModalConfig) Validate() error {
	if c == nil {
		return errors.New("model: config is nil")
	}
	var errs []error
	seen := make(map[string]int, len(c.Fields))
	for idx, field := range c.Fields {
		key := strings.TrimSpace(field.Field)
		if key == "" {
			errs = append(errs, fmt.Errorf("model: field #%d has no key", idx))
			continue
		}
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("model: field %q declared at #%d and #%d", key, prev, idx))
			continue
		}
		seen[key] = idx
		if field.Button != nil && field.Button.ChildModal.Config != nil {
			if err := field.Button.ChildModal.Config.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("model: child modal of %q: %w", key, err))
			}
		}
	}
	return errors.Join(errs...)
}
