// Package resolver computes the effective configuration of a modal for one
// render pass by merging BeforeShow hook output or caller-supplied initial
// data onto a copy of the registered configuration.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formmodal/pkg/model"
)

// DefaultTimeout bounds BeforeShow hooks unless overridden.
const DefaultTimeout = 30 * time.Second

// ErrHookTimeout is returned when a hook does not finish before the deadline.
var ErrHookTimeout = errors.New("resolver: hook timed out")

// Result is the resolved configuration plus data that did not match any
// field. Extra is merged into the form state by the caller.
type Result struct {
	Config *model.ModalConfig
	Extra  map[string]any
}

// Option configures Resolve.
type Option func(*settings)

type settings struct {
	timeout time.Duration
}

// WithTimeout overrides DefaultTimeout. Zero or negative disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// Resolve never mutates cfg. When cfg has a BeforeShow hook and it returns a
// non-nil map, that map wins and initData is ignored. A failing hook yields
// the unmodified copy together with the error so callers can still render.
func Resolve(ctx context.Context, cfg *model.ModalConfig, initData any, options ...Option) (Result, error) {
	s := settings{timeout: DefaultTimeout}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}

	result := Result{Config: cfg.Clone(), Extra: map[string]any{}}
	if cfg == nil {
		return result, nil
	}

	if cfg.BeforeShow != nil {
		overrides, err := CallBeforeShow(ctx, cfg.BeforeShow, initData, s.timeout)
		if err != nil {
			return result, fmt.Errorf("resolver: before show: %w", err)
		}
		if overrides != nil {
			result.Config.Fields, result.Extra = mergeKeyed(result.Config.Fields, overrides)
			return result, nil
		}
	}

	switch data := initData.(type) {
	case nil:
	case map[string]any:
		result.Config.Fields, result.Extra = mergeKeyed(result.Config.Fields, data)
	case []map[string]any:
		result.Config.Fields = mergePositional(result.Config.Fields, func(idx int) (any, bool) {
			if idx >= len(data) {
				return nil, false
			}
			return data[idx], true
		})
	case []any:
		result.Config.Fields = mergePositional(result.Config.Fields, func(idx int) (any, bool) {
			if idx >= len(data) {
				return nil, false
			}
			return data[idx], true
		})
	}
	return result, nil
}

// CallBeforeShow runs the hook under timeout. The hook runs in its own
// goroutine so a hook that ignores its context cannot block the caller past
// the deadline.
func CallBeforeShow(ctx context.Context, hook model.BeforeShowFunc, initData any, timeout time.Duration) (map[string]any, error) {
	return Call(ctx, timeout, func(ctx context.Context) (map[string]any, error) {
		return hook(ctx, initData)
	})
}

// Call runs fn with a deadline derived from ctx and timeout. Panics inside fn
// are reported as errors.
func Call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	callCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("resolver: hook panicked: %v", r)}
			}
		}()
		value, err := fn(callCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, ErrHookTimeout
		}
		return zero, callCtx.Err()
	}
}

func mergeKeyed(fields []model.FieldDescriptor, overrides map[string]any) ([]model.FieldDescriptor, map[string]any) {
	extra := make(map[string]any)
	known := make(map[string]struct{}, len(fields))
	for idx, field := range fields {
		known[field.Field] = struct{}{}
		patch, ok := asPatch(overrides[field.Field])
		if !ok {
			continue
		}
		fields[idx] = model.ApplyOverride(field, patch)
	}
	for key, value := range overrides {
		if _, ok := known[key]; !ok {
			extra[key] = value
		}
	}
	return fields, extra
}

func mergePositional(fields []model.FieldDescriptor, at func(int) (any, bool)) []model.FieldDescriptor {
	for idx, field := range fields {
		entry, ok := at(idx)
		if !ok {
			break
		}
		patch, ok := asPatch(entry)
		if !ok {
			continue
		}
		fields[idx] = model.ApplyOverride(field, patch)
	}
	return fields
}

// asPatch treats a non-map override as shorthand for {"value": v}. Nil
// entries leave the field untouched.
func asPatch(entry any) (map[string]any, bool) {
	switch v := entry.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return v, true
	default:
		return map[string]any{"value": v}, true
	}
}
