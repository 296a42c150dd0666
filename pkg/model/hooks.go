package model

import "strings"

// Hooks holds named functions that file-based configurations refer to by
// string.
type Hooks struct {
	BeforeShow map[string]BeforeShowFunc
	Submit     map[string]SubmitFunc
	Verify     map[string]VerifyFunc
	Change     map[string]ChangeFunc
	Click      map[string]ClickFunc
}

// Merge returns a table containing the entries of both; other wins on
// conflicts.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		BeforeShow: mergeHooks(h.BeforeShow, other.BeforeShow),
		Submit:     mergeHooks(h.Submit, other.Submit),
		Verify:     mergeHooks(h.Verify, other.Verify),
		Change:     mergeHooks(h.Change, other.Change),
		Click:      mergeHooks(h.Click, other.Click),
	}
}

// Bind resolves hook names in place and returns the names that could not be
// found. Functions already set on the configuration are left untouched.
// Inline child configurations are bound as well.
func (h Hooks) Bind(cfg *ModalConfig) []string {
	if cfg == nil {
		return nil
	}
	var missing []string
	lookup := func(kind, name string, found bool) {
		if !found {
			missing = append(missing, kind+":"+name)
		}
	}

	if name := strings.TrimSpace(cfg.BeforeShowHook); name != "" && cfg.BeforeShow == nil {
		fn, ok := h.BeforeShow[name]
		cfg.BeforeShow = fn
		lookup("beforeShow", name, ok)
	}
	if name := strings.TrimSpace(cfg.SubmitHook); name != "" && cfg.OnSubmit == nil {
		fn, ok := h.Submit[name]
		cfg.OnSubmit = fn
		lookup("onSubmit", name, ok)
	}
	for idx := range cfg.Buttons {
		button := &cfg.Buttons[idx]
		if name := strings.TrimSpace(button.ClickHook); name != "" && button.OnClick == nil {
			fn, ok := h.Click[name]
			button.OnClick = fn
			lookup("onClick", name, ok)
		}
	}
	for idx := range cfg.Fields {
		field := &cfg.Fields[idx]
		if name := strings.TrimSpace(field.ChangeHook); name != "" && field.OnChange == nil {
			fn, ok := h.Change[name]
			field.OnChange = fn
			lookup("onChange", name, ok)
		}
		if name := strings.TrimSpace(field.Verify.Hook); name != "" && field.Verify.Func == nil {
			fn, ok := h.Verify[name]
			field.Verify.Func = fn
			lookup("verify", name, ok)
		}
		if field.Button == nil {
			continue
		}
		button := *field.Button
		if name := strings.TrimSpace(button.ClickHook); name != "" && button.OnClick == nil {
			fn, ok := h.Click[name]
			button.OnClick = fn
			lookup("onClick", name, ok)
		}
		if button.ChildModal.Config != nil {
			child := button.ChildModal.Config.Clone()
			missing = append(missing, h.Bind(child)...)
			button.ChildModal.Config = child
		}
		field.Button = &button
	}
	return missing
}

func mergeHooks[T any](base, extra map[string]T) map[string]T {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]T, len(base)+len(extra))
	for key, fn := range base {
		out[key] = fn
	}
	for key, fn := range extra {
		out[key] = fn
	}
	return out
}
