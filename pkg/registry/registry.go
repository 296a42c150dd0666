// Package registry resolves modal names to configurations. Registered
// configurations are served from memory; unknown names are loaded lazily from
// an ordered list of sources, extracted from the loaded module, bound to the
// hook table and cached for the lifetime of the registry.
//
// Lookups never fail loudly: a name that cannot be resolved is logged and
// reported as absent so callers can render an empty modal.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-formmodal/internal/loader"
	"github.com/goliatone/go-formmodal/pkg/model"
)

// Option configures a Registry.
type Option func(*Registry)

// WithSource appends candidate sources; they are tried in the order given.
func WithSource(sources ...Source) Option {
	return func(r *Registry) {
		for _, src := range sources {
			if src != nil {
				r.sources = append(r.sources, src)
			}
		}
	}
}

// WithCatalog sets the list of published modal files.
func WithCatalog(catalog Catalog) Option {
	return func(r *Registry) {
		r.catalog = catalog
	}
}

// WithHooks sets the table hook names are bound against.
func WithHooks(hooks model.Hooks) Option {
	return func(r *Registry) {
		r.hooks = r.hooks.Merge(hooks)
	}
}

// WithDecorator appends decorators run on every loaded configuration before
// it is cached.
func WithDecorator(decorators ...model.Decorator) Option {
	return func(r *Registry) {
		for _, d := range decorators {
			if d != nil {
				r.decorators = append(r.decorators, d)
			}
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]*model.ModalConfig

	sources    []Source
	catalog    Catalog
	hooks      model.Hooks
	decorators []model.Decorator
	logger     *slog.Logger
	group      singleflight.Group

	listMu  sync.Mutex
	listed  bool
	fetched bool
	known   map[string]struct{}
}

// New constructs a Registry.
func New(options ...Option) *Registry {
	r := &Registry{
		configs: make(map[string]*model.ModalConfig),
		known:   make(map[string]struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register stores cfg under name, replacing any previous entry.
func (r *Registry) Register(name string, cfg *model.ModalConfig) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
}

// Has reports whether name is cached.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.configs[strings.TrimSpace(name)]
	return ok
}

// Invalidate drops the cached entry so the next Get reloads it.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.configs, strings.TrimSpace(name))
}

// Start fetches the catalog in the background.
func (r *Registry) Start(ctx context.Context) {
	go r.ensureCatalog(ctx)
}

// Get returns the configuration registered or loadable under name. The
// returned pointer is shared; callers must not mutate it.
func (r *Registry) Get(ctx context.Context, name string) (*model.ModalConfig, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	r.mu.RLock()
	cfg, ok := r.configs[name]
	r.mu.RUnlock()
	if ok {
		return cfg, cfg != nil
	}

	value, _, _ := r.group.Do(name, func() (any, error) {
		return r.load(ctx, name), nil
	})
	cfg, _ = value.(*model.ModalConfig)
	return cfg, cfg != nil
}

// Names lists catalog entries and registered names, sorted and deduplicated.
func (r *Registry) Names(ctx context.Context) []string {
	r.ensureCatalog(ctx)

	seen := make(map[string]struct{})
	r.listMu.Lock()
	for name := range r.known {
		seen[name] = struct{}{}
	}
	r.listMu.Unlock()

	r.mu.RLock()
	for name := range r.configs {
		seen[name] = struct{}{}
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RefreshCatalog refetches the catalog on the next lookup.
func (r *Registry) RefreshCatalog() {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	r.fetched = false
}

func (r *Registry) load(ctx context.Context, name string) *model.ModalConfig {
	r.mu.RLock()
	cached, ok := r.configs[name]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	if listed, known := r.inCatalog(ctx, name); listed && !known {
		r.logger.Warn("registry: modal not in catalog", "name", name, "suggestions", r.suggest(name))
	}

	for _, src := range r.sources {
		module, err := src.Open(ctx, name)
		if err != nil {
			if !loader.IsNotFound(err) {
				r.logger.Warn("registry: source failed", "name", name, "source", src.Name(), "err", err)
			}
			continue
		}
		cfg, export, ok := Extract(module, name)
		if !ok {
			r.logger.Warn("registry: no configuration export", "name", name, "source", src.Name())
			continue
		}
		cfg = cfg.Clone()
		if missing := r.hooks.Bind(cfg); len(missing) > 0 {
			r.logger.Warn("registry: unresolved hooks", "name", name, "hooks", missing)
		}
		for _, d := range r.decorators {
			if err := d.Decorate(cfg); err != nil {
				r.logger.Warn("registry: decorator failed", "name", name, "err", err)
			}
		}
		if err := cfg.Validate(); err != nil {
			r.logger.Warn("registry: configuration has problems", "name", name, "err", err)
		}
		r.Register(name, cfg)
		r.logger.Debug("registry: loaded", "name", name, "source", src.Name(), "export", export)
		return cfg
	}

	r.logger.Error("registry: configuration not found", "name", name, "sources", len(r.sources))
	return nil
}

// ensureCatalog fetches the catalog once. A failed fetch is only logged and
// disables the membership check.
func (r *Registry) ensureCatalog(ctx context.Context) {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	if r.fetched || r.catalog == nil {
		return
	}
	r.fetched = true

	entries, err := r.catalog.List(ctx)
	if err != nil {
		r.listed = false
		r.logger.Warn("registry: catalog unavailable", "err", err)
		return
	}
	r.listed = true
	r.known = make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if name := ModalName(entry); name != "" {
			r.known[name] = struct{}{}
		}
	}
}

func (r *Registry) inCatalog(ctx context.Context, name string) (listed, known bool) {
	r.ensureCatalog(ctx)
	r.listMu.Lock()
	defer r.listMu.Unlock()
	_, known = r.known[name]
	return r.listed, known
}

func (r *Registry) markKnown(name string) {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	r.known[name] = struct{}{}
}

func (r *Registry) suggest(name string) []string {
	r.listMu.Lock()
	candidates := make([]string, 0, len(r.known))
	for known := range r.known {
		candidates = append(candidates, known)
	}
	r.listMu.Unlock()
	sort.Strings(candidates)

	matches := fuzzy.Find(name, candidates)
	out := make([]string, 0, 3)
	for _, match := range matches {
		out = append(out, match.Str)
		if len(out) == 3 {
			break
		}
	}
	return out
}
