package modal

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-formmodal/pkg/registry"
	"github.com/goliatone/go-formmodal/pkg/validation"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// Option configures a Modal.
type Option func(*Modal)

// WithRegistry sets the configuration registry used to resolve modal names.
func WithRegistry(reg *registry.Registry) Option {
	return func(m *Modal) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithWidgets sets the widget registry.
func WithWidgets(reg *widgets.Registry) Option {
	return func(m *Modal) {
		if reg != nil {
			m.widgets = reg
		}
	}
}

// WithValidator sets the validation engine run on submit.
func WithValidator(engine *validation.Engine) Option {
	return func(m *Modal) {
		if engine != nil {
			m.validator = engine
		}
	}
}

// WithHost sets the presentation host.
func WithHost(host Host) Option {
	return func(m *Modal) {
		if host != nil {
			m.host = host
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Modal) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHookTimeout bounds BeforeShow and OnSubmit hooks. Zero or negative
// disables the limit.
func WithHookTimeout(d time.Duration) Option {
	return func(m *Modal) {
		m.hookTimeout = d
	}
}

// WithMaxDepth bounds child navigation.
func WithMaxDepth(depth int) Option {
	return func(m *Modal) {
		m.stack = NewStack(depth)
	}
}

// WithID overrides the generated instance identifier.
func WithID(id string) Option {
	return func(m *Modal) {
		if id != "" {
			m.id = id
		}
	}
}
