// Package validation checks collected form values against the rules declared
// on field descriptors: required flags, verifier functions, named patterns
// and raw regular expressions.
package validation

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-formmodal/pkg/model"
)

// Message formats used when a rule does not supply its own text.
const (
	requiredSuffix = " 不能为空！"
	verifySuffix   = " 验证失败"
	formatSuffix   = " 格式错误"
)

// Option configures an Engine.
type Option func(*Engine)

// WithPatterns replaces the named pattern table.
func WithPatterns(patterns *Patterns) Option {
	return func(e *Engine) {
		if patterns != nil {
			e.patterns = patterns
		}
	}
}

// WithLogger sets the logger used to report unusable raw patterns.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine validates form values. It is safe for concurrent use.
type Engine struct {
	patterns *Patterns
	logger   *slog.Logger

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// New constructs an Engine backed by DefaultPatterns unless overridden.
func New(options ...Option) *Engine {
	e := &Engine{
		patterns: DefaultPatterns(),
		logger:   slog.Default(),
		compiled: make(map[string]*regexp.Regexp),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Patterns exposes the pattern table so callers can register more entries.
func (e *Engine) Patterns() *Patterns {
	return e.patterns
}

// Validate checks every field in declaration order and returns all messages.
// Each field contributes at most one message.
func (e *Engine) Validate(fields []model.FieldDescriptor, values map[string]any) []string {
	var errs []string
	for _, field := range fields {
		if msg, ok := e.ValidateField(field, values[field.Field]); !ok {
			errs = append(errs, msg)
		}
	}
	return errs
}

// ValidateField checks a single value. It returns the failure message and
// false when the value is rejected.
func (e *Engine) ValidateField(field model.FieldDescriptor, value any) (string, bool) {
	title := field.DisplayTitle()
	if IsEmpty(value) {
		if field.Required {
			return title + requiredSuffix, false
		}
		return "", true
	}

	verify := field.Verify
	if verify.Func != nil {
		if err := verify.Func(value); err != nil {
			msg := strings.TrimSpace(err.Error())
			if msg == "" {
				msg = title + verifySuffix
			}
			return msg, false
		}
		return "", true
	}

	pattern := strings.TrimSpace(verify.Pattern)
	if pattern == "" {
		return "", true
	}
	text := textOf(value)

	if named, ok := e.patterns.Lookup(pattern); ok {
		if named.Match(text) {
			return "", true
		}
		msg := named.Message
		if msg == "" {
			msg = formatSuffix
		}
		return title + msg, false
	}

	re, err := e.compile(verify.Pattern)
	if err != nil {
		e.logger.Warn("validation: unusable pattern", "field", field.Field, "pattern", verify.Pattern, "err", err)
		return title + formatSuffix, false
	}
	if !re.MatchString(text) {
		return title + formatSuffix, false
	}
	return "", true
}

func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if re, ok := e.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.compiled[pattern] = re
	return re, nil
}

// IsEmpty reports whether a value counts as missing for required checks: nil,
// the empty string, or an empty list.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

func textOf(value any) string {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, model.Stringify(item))
		}
		return strings.Join(parts, ",")
	}
	return model.Stringify(value)
}
