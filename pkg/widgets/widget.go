// Package widgets renders field descriptors into headless widgets. A widget
// owns the raw control value for one field; hosts drive it through Input and
// Press and the modal listens through OnChange.
package widgets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-formmodal/pkg/model"
)

var (
	// ErrReadonly is returned when input targets a readonly field.
	ErrReadonly = errors.New("widgets: field is readonly")
	// ErrDestroyed is returned when a destroyed widget receives input.
	ErrDestroyed = errors.New("widgets: widget destroyed")
	// ErrNoButton is returned by Press when the field has no action button.
	ErrNoButton = errors.New("widgets: field has no button")
	// ErrUnknownOption is returned when input names an option the field does
	// not declare.
	ErrUnknownOption = errors.New("widgets: unknown option")
)

// ChangeHandler receives the raw value reported by the control.
type ChangeHandler func(field string, raw any, kind model.FieldType)

// ButtonHandler runs when a field's action button is pressed.
type ButtonHandler func(ctx context.Context, field string, button model.ButtonDescriptor) error

// Container is the display surface widgets mount onto.
type Container interface {
	Mount(field string, w Widget) error
}

// Widget is a mounted form control.
type Widget interface {
	Descriptor() model.FieldDescriptor
	Mount(c Container) error
	Value() any
	SetValue(value any)
	OnChange(fn ChangeHandler)
	// Input applies a user edit and notifies the change handler.
	Input(raw any) error
	// Press activates the field's action button.
	Press(ctx context.Context) error
	Destroy()
}

// Params carries everything a constructor needs.
type Params struct {
	Field    model.FieldDescriptor
	Value    any
	OnChange ChangeHandler
	OnButton ButtonHandler
}

// Constructor builds a widget for a field.
type Constructor func(p Params) (Widget, error)

// base implements the bookkeeping shared by the built-in widgets.
type base struct {
	mu        sync.RWMutex
	field     model.FieldDescriptor
	onChange  ChangeHandler
	onButton  ButtonHandler
	destroyed bool
}

func (b *base) init(p Params) {
	b.field = p.Field
	b.onChange = p.OnChange
	b.onButton = p.OnButton
}

func (b *base) Descriptor() model.FieldDescriptor {
	return b.field
}

func (b *base) OnChange(fn ChangeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *base) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = true
	b.onChange = nil
	b.onButton = nil
}

func (b *base) Press(ctx context.Context) error {
	b.mu.RLock()
	handler, destroyed := b.onButton, b.destroyed
	b.mu.RUnlock()
	if destroyed {
		return ErrDestroyed
	}
	if b.field.Button == nil {
		return fmt.Errorf("%w: %s", ErrNoButton, b.field.Field)
	}
	if handler == nil {
		return nil
	}
	return handler(ctx, b.field.Field, *b.field.Button)
}

// guard rejects input on destroyed or readonly widgets.
func (b *base) guard() error {
	if b.destroyed {
		return ErrDestroyed
	}
	if b.field.Readonly {
		return fmt.Errorf("%w: %s", ErrReadonly, b.field.Field)
	}
	return nil
}

// notify must be called without holding b.mu.
func (b *base) notify(raw any) {
	b.mu.RLock()
	handler := b.onChange
	b.mu.RUnlock()
	if handler != nil {
		handler(b.field.Field, raw, b.field.Kind())
	}
}

func mount(c Container, w Widget) error {
	if c == nil {
		return nil
	}
	return c.Mount(w.Descriptor().Field, w)
}
