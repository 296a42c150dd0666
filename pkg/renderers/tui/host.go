// Package tui drives modals from the terminal. The Host keeps the presented
// tree in memory like modal.MemoryHost and Run turns every row into a survey
// prompt, then asks which footer action to take.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formmodal/pkg/modal"
	"github.com/goliatone/go-formmodal/pkg/model"
	"github.com/goliatone/go-formmodal/pkg/view"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// Host implements modal.Host for terminal sessions.
type Host struct {
	*modal.MemoryHost

	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	logger       *slog.Logger
}

// New constructs a Host with the survey driver and JSON output.
func New(options ...Option) (*Host, error) {
	h := &Host{
		MemoryHost:   modal.NewMemoryHost(),
		driver:       NewSurveyDriver(terminal.Stdio{}),
		outputFormat: OutputFormatJSON,
		logger:       slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// ShowErrors prints validation messages.
func (h *Host) ShowErrors(ctx context.Context, messages []string) error {
	if err := h.MemoryHost.ShowErrors(ctx, messages); err != nil {
		return err
	}
	for _, message := range messages {
		if err := h.driver.Info(ctx, h.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}
	return nil
}

// Run prompts until m closes. Each pass prompts every row of the visible
// level and then asks for a footer action; pressing a row button that opens
// a child restarts the pass on the child. Prompt errors close every level
// so a pending Show settles, and are returned.
func (h *Host) Run(ctx context.Context, m *modal.Modal) error {
	if m == nil {
		return errors.New("tui: modal is nil")
	}
	if m.Host() != modal.Host(h) {
		return errors.New("tui: modal is not attached to this host")
	}
	for m.IsOpen() {
		if err := ctx.Err(); err != nil {
			return h.abort(ctx, m, err)
		}
		tree := h.Tree()
		if err := h.driver.Info(ctx, h.header(tree)); err != nil {
			return h.abort(ctx, m, err)
		}
		navigated, err := h.promptRows(ctx, tree)
		if err != nil {
			return h.abort(ctx, m, err)
		}
		if navigated {
			continue
		}
		if err := h.promptFooter(ctx, m, tree); err != nil {
			return h.abort(ctx, m, err)
		}
	}
	return nil
}

func (h *Host) header(tree view.Tree) string {
	title := h.theme.TitlePrefix + tree.Title
	if tree.Depth > 0 {
		title = strings.Repeat("  ", tree.Depth) + title
	}
	return title
}

func (h *Host) abort(ctx context.Context, m *modal.Modal, cause error) error {
	for m.IsOpen() {
		if err := m.Close(context.WithoutCancel(ctx)); err != nil {
			h.logger.Warn("tui: close after abort failed", "err", err)
			break
		}
	}
	return cause
}

func (h *Host) promptRows(ctx context.Context, tree view.Tree) (bool, error) {
	for _, row := range tree.Rows {
		w, ok := h.Widget(row.Field)
		if !ok {
			continue
		}
		if row.Readonly {
			line := fmt.Sprintf("%s%s: %s", h.theme.InfoPrefix, row.Title, display(w.Value()))
			if err := h.driver.Info(ctx, line); err != nil {
				return false, err
			}
		} else if err := h.promptRow(ctx, row, w); err != nil {
			return false, err
		}
		if row.Button == nil {
			continue
		}
		press, err := h.driver.Confirm(ctx, ConfirmConfig{Message: row.Button.Text + "?"})
		if err != nil {
			return false, err
		}
		if !press {
			continue
		}
		before := h.Attaches()
		if err := w.Press(ctx); err != nil {
			if infoErr := h.driver.Info(ctx, h.theme.ErrorPrefix+err.Error()); infoErr != nil {
				return false, infoErr
			}
			continue
		}
		if h.Attaches() != before {
			return true, nil
		}
	}
	return false, nil
}

func (h *Host) promptRow(ctx context.Context, row view.Row, w widgets.Widget) error {
	message := row.Title
	if row.Required {
		message += " *"
	}
	help := row.Description

	for {
		var (
			next    any
			changed bool
			err     error
		)
		switch {
		case row.Kind == model.FieldTypeCheckbox:
			current := model.ToBool(w.Value())
			var answer bool
			answer, err = h.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: help})
			next, changed = answer, answer != current
		case row.Kind.IsMulti() && len(row.Options) > 0:
			current := model.ToStrings(w.Value())
			labels, values := optionLists(row.Options)
			var defaults []int
			for idx, value := range values {
				if slices.Contains(current, value) {
					defaults = append(defaults, idx)
				}
			}
			var picked []int
			picked, err = h.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults, Help: help})
			selected := make([]string, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(values) {
					selected = append(selected, values[idx])
				}
			}
			next, changed = selected, !slices.Equal(selected, current)
		case row.Kind.HasOptions() && len(row.Options) > 0:
			current := model.Stringify(w.Value())
			labels, values := optionLists(row.Options)
			var idx int
			idx, err = h.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: slices.Index(values, current), Help: help})
			if err == nil && (idx < 0 || idx >= len(values)) {
				if infoErr := h.driver.Info(ctx, h.theme.ErrorPrefix+"invalid selection"); infoErr != nil {
					return infoErr
				}
				continue
			}
			if err == nil {
				next, changed = values[idx], values[idx] != current
			}
		default:
			current := model.Stringify(w.Value())
			var answer string
			cfg := InputConfig{Message: message, Default: current, Help: help, Placeholder: row.Placeholder}
			switch row.Kind {
			case model.FieldTypePassword:
				answer, err = h.driver.Password(ctx, cfg)
			case model.FieldTypeTextarea:
				answer, err = h.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current, Help: help})
			default:
				answer, err = h.driver.Input(ctx, cfg)
			}
			next, changed = answer, answer != current
		}
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := w.Input(next); err != nil {
			if infoErr := h.driver.Info(ctx, h.theme.ErrorPrefix+err.Error()); infoErr != nil {
				return infoErr
			}
			continue
		}
		return nil
	}
}

func (h *Host) promptFooter(ctx context.Context, m *modal.Modal, tree view.Tree) error {
	var labels, keys []string
	for _, button := range tree.Footer {
		if button.Disabled {
			continue
		}
		labels = append(labels, button.Text)
		keys = append(keys, button.Key)
	}
	if len(keys) == 0 {
		return m.Close(ctx)
	}
	idx, err := h.driver.Select(ctx, SelectConfig{Message: tree.Title, Options: labels, DefaultIndex: len(labels) - 1})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(keys) {
		return h.driver.Info(ctx, h.theme.ErrorPrefix+"invalid selection")
	}
	err = m.Action(ctx, keys[idx])
	var verr *modal.ValidationError
	switch {
	case err == nil, errors.As(err, &verr):
		return nil
	default:
		h.logger.Warn("tui: action failed", "key", keys[idx], "err", err)
		return h.driver.Info(ctx, h.theme.ErrorPrefix+err.Error())
	}
}

func optionLists(options []view.Option) (labels, values []string) {
	for _, opt := range options {
		labels = append(labels, opt.Label)
		values = append(values, opt.Value)
	}
	return labels, values
}

func display(value any) string {
	if values, ok := value.([]string); ok {
		return strings.Join(values, ", ")
	}
	return model.Stringify(value)
}
