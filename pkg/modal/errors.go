package modal

import (
	"errors"
	"strings"
)

var (
	// ErrSuperseded settles a pending result when a newer Show replaces it,
	// and is returned by a render that lost to a newer one.
	ErrSuperseded = errors.New("modal: superseded by a newer render")
	// ErrNotOpen is returned by operations that need a visible modal.
	ErrNotOpen = errors.New("modal: not open")
	// ErrDepthExceeded is returned when opening a child would exceed the
	// navigation limit.
	ErrDepthExceeded = errors.New("modal: navigation depth exceeded")
	// ErrUnknownButton is returned by Action for keys the footer lacks.
	ErrUnknownButton = errors.New("modal: unknown footer button")
	// ErrUnknownProperty is returned by SetProp for unsupported names.
	ErrUnknownProperty = errors.New("modal: unknown property")
)

// ValidationError carries the messages produced by a failed submit. The
// modal stays open when it is returned.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "modal: validation failed: " + strings.Join(e.Messages, "; ")
}
