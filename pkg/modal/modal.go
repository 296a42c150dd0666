// Package modal drives a configurable form dialog: it resolves the
// configuration for each render, keeps the form state, presents it through a
// Host, runs validation and submit handlers, and navigates into child modals
// while remembering every parent level.
package modal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formmodal/pkg/formstate"
	"github.com/goliatone/go-formmodal/pkg/model"
	"github.com/goliatone/go-formmodal/pkg/registry"
	"github.com/goliatone/go-formmodal/pkg/resolver"
	"github.com/goliatone/go-formmodal/pkg/validation"
	"github.com/goliatone/go-formmodal/pkg/view"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// Property names accepted by SetProp.
const (
	PropTitle     = "title"
	PropConfig    = "config"
	PropModalName = "modalName"
	PropInitData  = "initData"
	PropFormData  = "formData"
)

// SubmitEvent is emitted when a valid submit has no OnSubmit handler.
type SubmitEvent struct {
	ModalID   string
	ModalName string
	Values    map[string]any
}

type props struct {
	title     string
	config    *model.ModalConfig
	modalName string
	initData  any
	formData  map[string]any
}

// Modal is one dialog instance. All methods are safe for concurrent use.
type Modal struct {
	id          string
	registry    *registry.Registry
	widgets     *widgets.Registry
	validator   *validation.Engine
	host        Host
	logger      *slog.Logger
	hookTimeout time.Duration

	// hostMu serialises Attach/Mount so a stale render never overwrites a
	// newer one on the host.
	hostMu sync.Mutex

	mu          sync.RWMutex
	props       props
	stack       *Stack
	generation  uint64
	open        bool
	resolved    *model.ModalConfig
	title       string
	form        *formstate.State
	inputs      map[string]widgets.Widget
	tree        view.Tree
	pending     *Pending
	subscribers map[uint64]func(SubmitEvent)
	nextSub     uint64
}

// New creates a closed modal. Without options it uses an empty registry, the
// built-in widgets and patterns, and a MemoryHost.
func New(options ...Option) *Modal {
	m := &Modal{
		id:          uuid.NewString(),
		registry:    registry.New(),
		widgets:     widgets.NewRegistry(),
		validator:   validation.New(),
		host:        NewMemoryHost(),
		logger:      slog.Default(),
		hookTimeout: resolver.DefaultTimeout,
		stack:       NewStack(DefaultMaxDepth),
		subscribers: map[uint64]func(SubmitEvent){},
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	m.logger = m.logger.With("modal", m.id)
	return m
}

func (m *Modal) ID() string { return m.id }

// Host returns the presentation host.
func (m *Modal) Host() Host { return m.host }

// Show opens the root level with the named configuration and returns its
// pending result. An earlier unsettled Show is rejected with ErrSuperseded
// and any suspended child navigation is discarded.
func (m *Modal) Show(ctx context.Context, name string, initData any) *Pending {
	return m.show(ctx, props{modalName: name, initData: initData})
}

// ShowConfig is Show for an inline configuration.
func (m *Modal) ShowConfig(ctx context.Context, cfg *model.ModalConfig, initData any) *Pending {
	return m.show(ctx, props{config: cfg, initData: initData})
}

func (m *Modal) show(ctx context.Context, next props) *Pending {
	p := newPending()

	m.mu.Lock()
	previous := m.pending
	m.pending = p
	next.title = m.props.title
	m.props = next
	frames := m.stack.Clear()
	m.mu.Unlock()

	previous.reject(ErrSuperseded)
	for _, frame := range frames {
		if frame.pending != previous {
			frame.pending.reject(ErrSuperseded)
		}
	}

	if err := m.render(ctx); err != nil {
		if !errors.Is(err, ErrSuperseded) {
			m.dropPending(p, err)
		}
		return p
	}
	if err := m.Open(ctx); err != nil {
		m.dropPending(p, err)
	}
	return p
}

func (m *Modal) dropPending(p *Pending, err error) {
	m.mu.Lock()
	if m.pending == p {
		m.pending = nil
	}
	m.mu.Unlock()
	p.reject(err)
}

// SetProp updates one render input and re-renders. Values typed so far are
// carried into the new render unless formData itself is being set. The
// modal is re-opened only when it is showing a child level.
func (m *Modal) SetProp(ctx context.Context, name string, value any) error {
	m.mu.Lock()
	switch name {
	case PropTitle:
		m.props.title = model.Stringify(value)
	case PropConfig:
		if value == nil {
			m.props.config = nil
			break
		}
		cfg, err := model.DecodeConfig(value)
		if err != nil {
			m.mu.Unlock()
			return fmt.Errorf("modal: set config: %w", err)
		}
		m.props.config = cfg
	case PropModalName:
		m.props.modalName = model.Stringify(value)
	case PropInitData:
		m.props.initData = value
	case PropFormData:
		values, _ := value.(map[string]any)
		m.props.formData = formstate.Clone(values)
	default:
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	if name != PropFormData && m.form != nil {
		m.props.formData = m.form.Snapshot()
	}
	nested := m.stack.Depth() > 0
	m.mu.Unlock()

	if err := m.render(ctx); err != nil {
		return err
	}
	if nested {
		return m.Open(ctx)
	}
	return nil
}

// Render resolves the current configuration and presents it. The swap is
// atomic: a render overtaken by a newer one returns ErrSuperseded and leaves
// no trace.
func (m *Modal) Render(ctx context.Context) error {
	return m.render(ctx)
}

func (m *Modal) render(ctx context.Context) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	p := m.props
	depth := m.stack.Depth()
	m.mu.Unlock()

	base := p.config
	if p.modalName != "" {
		if cfg, ok := m.registry.Get(ctx, p.modalName); ok {
			base = cfg
		} else if base == nil {
			m.logger.Warn("modal: configuration not found", "name", p.modalName)
		}
	}

	res, err := resolver.Resolve(ctx, base, p.initData, resolver.WithTimeout(m.hookTimeout))
	if err != nil {
		m.logger.Error("modal: resolve failed, rendering unmodified configuration", "name", p.modalName, "err", err)
	}
	if res.Config == nil {
		res.Config = &model.ModalConfig{}
	}

	title := res.Config.Title
	if title == "" {
		title = p.title
	}
	state := formstate.Init(res.Config.Fields, p.formData, res.Extra)
	values := state.Snapshot()
	tree := view.Build(view.Input{
		ID:     m.id,
		Title:  title,
		Config: res.Config,
		Values: values,
		Depth:  depth,
	})

	inputs := make(map[string]widgets.Widget, len(res.Config.Fields))
	for _, field := range res.Config.Fields {
		w, err := m.widgets.Render(field, values[field.Field], m.changeHandler(gen), m.Press)
		if err != nil {
			destroyAll(inputs)
			return fmt.Errorf("modal: render: %w", err)
		}
		inputs[field.Field] = w
	}

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		destroyAll(inputs)
		return ErrSuperseded
	}
	old := m.inputs
	m.resolved = res.Config
	m.title = tree.Title
	m.form = state
	m.inputs = inputs
	m.tree = tree
	m.mu.Unlock()
	destroyAll(old)

	m.hostMu.Lock()
	defer m.hostMu.Unlock()
	if m.currentGeneration() != gen {
		return ErrSuperseded
	}
	container, err := m.host.Attach(ctx, tree)
	if err != nil {
		return fmt.Errorf("modal: attach: %w", err)
	}
	for _, field := range res.Config.Fields {
		if err := inputs[field.Field].Mount(container); err != nil {
			return fmt.Errorf("modal: mount %q: %w", field.Field, err)
		}
	}
	return nil
}

func (m *Modal) currentGeneration() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Open makes the current render visible.
func (m *Modal) Open(ctx context.Context) error {
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
	if err := m.host.Open(ctx); err != nil {
		return fmt.Errorf("modal: open: %w", err)
	}
	return nil
}

// Close hides the current level. A child level returns to its parent with
// the parent's inputs and values restored. The root level clears the form
// and settles the pending result with a close action. Closing a closed
// modal is a no-op.
func (m *Modal) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return nil
	}
	m.open = false

	if frame, ok := m.stack.Pop(); ok {
		child, childPending := m.props, m.pending
		if m.form != nil {
			child.formData = m.form.Snapshot()
		}
		depth := m.stack.Depth()
		m.props = props{
			title:     frame.Title,
			config:    frame.Config,
			modalName: frame.ModalName,
			initData:  frame.InitData,
			formData:  frame.FormData,
		}
		m.pending = frame.pending
		m.mu.Unlock()

		if err := m.host.Close(ctx); err != nil {
			return fmt.Errorf("modal: close: %w", err)
		}
		if err := m.render(ctx); err != nil {
			return m.revert(ctx, err, func() bool {
				if m.stack.Depth() != depth || m.stack.Push(frame) != nil {
					return false
				}
				m.props = child
				m.pending = childPending
				return true
			})
		}
		return m.Open(ctx)
	}

	pending := m.pending
	m.pending = nil
	old := m.inputs
	m.inputs = nil
	m.form = nil
	m.resolved = nil
	m.tree = view.Tree{}
	m.props.formData = nil
	m.generation++
	m.mu.Unlock()

	destroyAll(old)
	var errs []error
	m.hostMu.Lock()
	if err := m.host.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("modal: close: %w", err))
	}
	if err := m.host.Detach(ctx); err != nil {
		errs = append(errs, fmt.Errorf("modal: detach: %w", err))
	}
	m.hostMu.Unlock()
	pending.resolve(Result{Action: model.ActionClose})
	return errors.Join(errs...)
}

// Press runs a row button. A button with a child reference suspends the
// current level and opens the child with fresh form state; otherwise its
// click hook receives the current values.
func (m *Modal) Press(ctx context.Context, field string, button model.ButtonDescriptor) error {
	if !button.ChildModal.IsZero() {
		return m.openChild(ctx, button.ChildModal)
	}
	if button.OnClick == nil {
		return nil
	}
	if err := button.OnClick(ctx, m.Values()); err != nil {
		m.logger.Warn("modal: button handler failed", "field", field, "err", err)
		return fmt.Errorf("modal: button %q: %w", field, err)
	}
	return nil
}

func (m *Modal) openChild(ctx context.Context, child model.ChildRef) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrNotOpen
	}
	frame := Frame{
		Title:     m.props.title,
		Config:    m.props.config,
		ModalName: m.props.modalName,
		InitData:  m.props.initData,
		pending:   m.pending,
	}
	if m.form != nil {
		frame.FormData = m.form.Snapshot()
	}
	if err := m.stack.Push(frame); err != nil {
		m.mu.Unlock()
		return err
	}
	parent, parentPending := m.props, m.pending
	depth := m.stack.Depth()
	if child.Config != nil {
		m.props.config = child.Config
		m.props.modalName = ""
	} else {
		m.props.config = nil
		m.props.modalName = child.Name
	}
	m.props.initData = nil
	m.props.formData = nil
	m.pending = nil
	m.mu.Unlock()

	if err := m.render(ctx); err != nil {
		return m.revert(ctx, err, func() bool {
			if m.stack.Depth() != depth {
				return false
			}
			top, _ := m.stack.Pop()
			parent.formData = top.FormData
			m.props = parent
			m.pending = parentPending
			return true
		})
	}
	return m.Open(ctx)
}

// revert undoes a navigation step whose render failed and presents the level
// the user was on again. undo runs under the lock and reports false when the
// stack moved on in the meantime. Renders overtaken by a newer one are left
// alone.
func (m *Modal) revert(ctx context.Context, err error, undo func() bool) error {
	if errors.Is(err, ErrSuperseded) {
		return err
	}
	m.mu.Lock()
	ok := undo()
	m.mu.Unlock()
	if !ok {
		return err
	}
	m.logger.Warn("modal: navigation reverted", "err", err)
	if rerr := m.render(ctx); rerr != nil {
		return errors.Join(err, rerr)
	}
	if oerr := m.Open(ctx); oerr != nil {
		return errors.Join(err, oerr)
	}
	return err
}

// Action dispatches a footer button by key.
func (m *Modal) Action(ctx context.Context, key string) error {
	m.mu.RLock()
	cfg := m.resolved
	m.mu.RUnlock()
	if cfg == nil {
		return ErrNotOpen
	}
	button, ok := cfg.FooterButton(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownButton, key)
	}
	if button.Disabled {
		return nil
	}
	switch button.Action {
	case model.ActionClose:
		return m.Close(ctx)
	case model.ActionSubmit:
		return m.Submit(ctx)
	}
	if button.OnClick == nil {
		return nil
	}
	if err := button.OnClick(ctx, m.Values()); err != nil {
		return fmt.Errorf("modal: button %q: %w", key, err)
	}
	return nil
}

// Submit collects and validates the form. Validation failures return a
// *ValidationError and keep the modal open. A failing OnSubmit rejects the
// pending result and keeps the modal open. Otherwise the pending result
// settles and the current level closes.
func (m *Modal) Submit(ctx context.Context) error {
	m.mu.Lock()
	if !m.open || m.form == nil || m.resolved == nil {
		m.mu.Unlock()
		return ErrNotOpen
	}
	readers := make(map[string]formstate.Reader, len(m.inputs))
	for field, w := range m.inputs {
		readers[field] = w
	}
	fields := m.resolved.Fields
	values := m.form.Collect(fields, readers)
	messages := m.validator.Validate(fields, values)
	if len(messages) > 0 {
		m.tree.Errors = messages
		m.mu.Unlock()
		if reporter, ok := m.host.(ErrorReporter); ok {
			if err := reporter.ShowErrors(ctx, messages); err != nil {
				m.logger.Warn("modal: show errors failed", "err", err)
			}
		}
		return &ValidationError{Messages: messages}
	}
	m.tree.Errors = nil
	handler := m.resolved.OnSubmit
	name := m.props.modalName
	m.mu.Unlock()

	if handler == nil {
		m.emit(SubmitEvent{ModalID: m.id, ModalName: name, Values: formstate.Clone(values)})
		m.settle(Result{Action: model.ActionSubmit, Data: values})
		return m.Close(ctx)
	}

	data, err := resolver.Call(ctx, m.hookTimeout, func(ctx context.Context) (any, error) {
		return handler(ctx, values)
	})
	if err != nil {
		m.logger.Error("modal: submit handler failed", "name", name, "err", err)
		m.mu.Lock()
		pending := m.pending
		m.pending = nil
		m.mu.Unlock()
		pending.reject(err)
		return fmt.Errorf("modal: submit: %w", err)
	}
	if data != nil {
		m.settle(Result{Action: model.ActionSubmit, Data: data})
	}
	return m.Close(ctx)
}

func (m *Modal) settle(result Result) {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	pending.resolve(result)
}

// Subscribe registers fn for submit events and returns a function that
// removes it.
func (m *Modal) Subscribe(fn func(SubmitEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *Modal) emit(event SubmitEvent) {
	m.mu.RLock()
	subscribers := make([]func(SubmitEvent), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subscribers = append(subscribers, fn)
	}
	m.mu.RUnlock()
	for _, fn := range subscribers {
		fn(event)
	}
}

func (m *Modal) changeHandler(gen uint64) widgets.ChangeHandler {
	return func(field string, raw any, kind model.FieldType) {
		m.mu.Lock()
		if gen != m.generation || m.form == nil || m.resolved == nil {
			m.mu.Unlock()
			return
		}
		descriptor, _ := m.resolved.Field(field)
		w := m.inputs[field]
		var value any
		switch kind {
		case model.FieldTypeCheckbox:
			value = model.ToBool(raw)
		case model.FieldTypeCheckboxGroup:
			value = model.ToStrings(raw)
		case model.FieldTypeMultiSelect:
			value = model.ToStrings(readValue(w, raw))
		case model.FieldTypeRadio:
			value = readValue(w, raw)
		default:
			value = raw
		}
		m.form.Set(field, value)
		snapshot := m.form.Snapshot()
		hook := descriptor.OnChange
		m.mu.Unlock()

		if hook == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("modal: change hook panicked", "field", field, "panic", r)
			}
		}()
		hook(value, field, snapshot)
	}
}

func readValue(w widgets.Widget, fallback any) any {
	if w == nil {
		return fallback
	}
	return w.Value()
}

// Values returns a copy of the current form state.
func (m *Modal) Values() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.form == nil {
		return map[string]any{}
	}
	return m.form.Snapshot()
}

// Resolved returns a copy of the configuration of the current render.
func (m *Modal) Resolved() *model.ModalConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolved.Clone()
}

// Tree returns the presentation of the current render.
func (m *Modal) Tree() view.Tree {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree
}

func (m *Modal) Title() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.title
}

// Widget returns the widget rendered for field.
func (m *Modal) Widget(field string) (widgets.Widget, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.inputs[field]
	return w, ok
}

// Input feeds raw user input to the widget of field.
func (m *Modal) Input(field string, raw any) error {
	w, ok := m.Widget(field)
	if !ok {
		return fmt.Errorf("modal: no widget for field %q", field)
	}
	return w.Input(raw)
}

// Depth is the number of suspended parent levels.
func (m *Modal) Depth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stack.Depth()
}

func (m *Modal) IsOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}

// Parent returns the suspended level directly below the current one.
func (m *Modal) Parent() (Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stack.Peek()
}

// ModalName is the registry name of the current level, if any.
func (m *Modal) ModalName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.props.modalName
}

func destroyAll(inputs map[string]widgets.Widget) {
	for _, w := range inputs {
		w.Destroy()
	}
}
