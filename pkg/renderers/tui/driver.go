package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a single-line row prompt. Placeholder is shown as
// help when the row has no description.
type InputConfig struct {
	Message     string
	Default     string
	Help        string
	Placeholder string
}

// ConfirmConfig describes a checkbox row or a row button prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes an option row or the footer action menu.
// DefaultIndex -1 means no default; Defaults apply to multi-value rows.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
}

// TextAreaConfig describes a textarea row.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver asks one question per modal row. Run only talks to the
// terminal through it, so sessions can be scripted.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// SurveyDriver is the PromptDriver behind New. It reads and writes through
// stdio so a session can run on any terminal.
type SurveyDriver struct {
	stdio terminal.Stdio
}

// NewSurveyDriver returns a driver bound to stdio. Zero fields fall back to
// the process streams.
func NewSurveyDriver(stdio terminal.Stdio) *SurveyDriver {
	if stdio.In == nil {
		stdio.In = os.Stdin
	}
	if stdio.Out == nil {
		stdio.Out = os.Stdout
	}
	if stdio.Err == nil {
		stdio.Err = os.Stderr
	}
	return &SurveyDriver{stdio: stdio}
}

// ask runs one prompt. A Ctrl-C aborts the whole modal session.
func (d *SurveyDriver) ask(ctx context.Context, prompt survey.Prompt, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, out, survey.WithStdio(d.stdio.In, d.stdio.Out, d.stdio.Err))
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: rowHelp(cfg)}, &out)
	return out, err
}

func (d *SurveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	if err := d.ask(ctx, &survey.Password{Message: cfg.Message, Help: rowHelp(cfg)}, &out); err != nil {
		return "", err
	}
	// An empty answer keeps the stored secret.
	if out == "" {
		out = cfg.Default
	}
	return out, nil
}

func (d *SurveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var out bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &out)
	return out, err
}

func (d *SurveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var picked survey.OptionAnswer
	if err := d.ask(ctx, prompt, &picked); err != nil {
		return -1, err
	}
	return picked.Index, nil
}

func (d *SurveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if defaults := pickDefaults(cfg.Options, cfg.Defaults); len(defaults) > 0 {
		prompt.Default = defaults
	}
	var picked []survey.OptionAnswer
	if err := d.ask(ctx, prompt, &picked); err != nil {
		return nil, err
	}
	out := make([]int, 0, len(picked))
	for _, answer := range picked {
		out = append(out, answer.Index)
	}
	slices.Sort(out)
	return out, nil
}

func (d *SurveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var out string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &out)
	return out, err
}

// Info prints headers and validation messages between prompts.
func (d *SurveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.stdio.Out, msg)
	return err
}

func rowHelp(cfg InputConfig) string {
	if cfg.Help != "" {
		return cfg.Help
	}
	return cfg.Placeholder
}

// pickDefaults maps preselected option indices to their labels, skipping
// indices that fall outside options.
func pickDefaults(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
