// Package view turns a resolved modal configuration and its form values into
// a presentation tree. Build is pure: hosts decide how the tree is drawn.
package view

import (
	"slices"

	"github.com/goliatone/go-formmodal/pkg/model"
)

// DefaultTitle is shown when neither the configuration nor the caller
// supplies a title.
const DefaultTitle = "自定义窗口"

// Option is a rendered choice of a select-like field.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Button is the action button attached to a row.
type Button struct {
	Text  string
	Child string // child modal name, or the inline child's title
}

// Row is one field line of the form.
type Row struct {
	Field       string
	Title       string
	Kind        model.FieldType
	Widget      string
	Required    bool
	Readonly    bool
	Value       any
	Text        string
	Placeholder string
	Label       string
	Description string
	Rows        int
	Options     []Option
	Button      *Button
}

// FooterButton is a rendered footer action.
type FooterButton struct {
	Key       string
	Text      string
	ClassName string
	Action    string
	Disabled  bool
}

// Tree is the full presentation of one modal level.
type Tree struct {
	ID     string
	Title  string
	Depth  int
	Rows   []Row
	Footer []FooterButton
	Errors []string
}

// Input is everything Build reads.
type Input struct {
	ID     string
	Title  string
	Config *model.ModalConfig
	Values map[string]any
	Depth  int
	Errors []string
}

// Build lays out one row per field in declaration order followed by the
// footer buttons.
func Build(in Input) Tree {
	title := in.Title
	if title == "" {
		title = DefaultTitle
	}
	tree := Tree{
		ID:     in.ID,
		Title:  title,
		Depth:  in.Depth,
		Errors: append([]string(nil), in.Errors...),
	}
	cfg := in.Config
	if cfg == nil {
		cfg = &model.ModalConfig{}
	}
	for _, field := range cfg.Fields {
		tree.Rows = append(tree.Rows, buildRow(field, in.Values[field.Field]))
	}
	for _, button := range cfg.FooterButtons() {
		tree.Footer = append(tree.Footer, FooterButton{
			Key:       button.Key,
			Text:      button.Text,
			ClassName: button.ClassName,
			Action:    button.Action,
			Disabled:  button.Disabled,
		})
	}
	return tree
}

func buildRow(field model.FieldDescriptor, value any) Row {
	row := Row{
		Field:       field.Field,
		Title:       field.DisplayTitle(),
		Kind:        field.Kind(),
		Required:    field.Required,
		Readonly:    field.Readonly,
		Value:       value,
		Text:        textOf(value),
		Placeholder: field.Placeholder,
		Label:       field.Label,
		Description: field.Description,
		Rows:        field.Rows,
	}
	if widget, ok := field.Attrs["widget"].(string); ok {
		row.Widget = widget
	}
	if row.Widget == "" {
		row.Widget = string(row.Kind)
	}
	selected := selectedValues(value)
	for _, opt := range field.Options {
		row.Options = append(row.Options, Option{
			Value:    opt.Value,
			Label:    opt.Text(),
			Selected: slices.Contains(selected, opt.Value),
		})
	}
	if field.Button != nil {
		button := &Button{Text: field.Button.Text}
		switch {
		case field.Button.ChildModal.Config != nil:
			button.Child = field.Button.ChildModal.Config.Title
		default:
			button.Child = field.Button.ChildModal.Name
		}
		if button.Text == "" {
			button.Text = "..."
		}
		row.Button = button
	}
	return row
}

func selectedValues(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		return model.ToStrings(v)
	case nil:
		return nil
	}
	return []string{model.Stringify(value)}
}

func textOf(value any) string {
	switch v := value.(type) {
	case []string, []any:
		return ""
	case nil:
		return ""
	default:
		return model.Stringify(v)
	}
}
