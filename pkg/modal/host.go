package modal

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-formmodal/pkg/view"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// Host presents a modal. Attach replaces whatever was shown before with the
// tree and returns the container the field widgets mount into. Open and Close
// only toggle visibility; Detach releases everything.
type Host interface {
	Attach(ctx context.Context, tree view.Tree) (widgets.Container, error)
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Detach(ctx context.Context) error
}

// ErrorReporter is implemented by hosts that can display validation
// messages without a full re-render.
type ErrorReporter interface {
	ShowErrors(ctx context.Context, messages []string) error
}

// MemoryHost keeps the presented tree and widgets in memory. It is the
// default host and the one tests drive.
type MemoryHost struct {
	mu       sync.RWMutex
	tree     view.Tree
	widgets  map[string]widgets.Widget
	order    []string
	errors   []string
	open     bool
	attaches int
}

// NewMemoryHost creates an empty host.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{widgets: map[string]widgets.Widget{}}
}

func (h *MemoryHost) Attach(ctx context.Context, tree view.Tree) (widgets.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree = tree
	h.widgets = map[string]widgets.Widget{}
	h.order = nil
	h.errors = append([]string(nil), tree.Errors...)
	h.attaches++
	return h, nil
}

// Mount implements widgets.Container.
func (h *MemoryHost) Mount(field string, w widgets.Widget) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.widgets[field]; exists {
		return fmt.Errorf("modal: field %q mounted twice", field)
	}
	h.widgets[field] = w
	h.order = append(h.order, field)
	return nil
}

func (h *MemoryHost) Open(context.Context) error {
	h.mu.Lock()
	h.open = true
	h.mu.Unlock()
	return nil
}

func (h *MemoryHost) Close(context.Context) error {
	h.mu.Lock()
	h.open = false
	h.mu.Unlock()
	return nil
}

func (h *MemoryHost) Detach(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree = view.Tree{}
	h.widgets = map[string]widgets.Widget{}
	h.order = nil
	h.errors = nil
	h.open = false
	return nil
}

func (h *MemoryHost) ShowErrors(_ context.Context, messages []string) error {
	h.mu.Lock()
	h.errors = append([]string(nil), messages...)
	h.mu.Unlock()
	return nil
}

// Tree returns the last attached tree.
func (h *MemoryHost) Tree() view.Tree {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tree
}

// Widget returns the widget mounted for field.
func (h *MemoryHost) Widget(field string) (widgets.Widget, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	w, ok := h.widgets[field]
	return w, ok
}

// Fields lists mounted fields in mount order.
func (h *MemoryHost) Fields() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.order...)
}

func (h *MemoryHost) Errors() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.errors...)
}

func (h *MemoryHost) IsOpen() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.open
}

// Attaches counts Attach calls.
func (h *MemoryHost) Attaches() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.attaches
}
