// Package catalogserver publishes a directory of modal configurations over
// HTTP in the layout registry.HTTPSource and registry.HTTPCatalog expect,
// plus an HTML preview of each modal.
package catalogserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formmodal/pkg/modal"
	"github.com/goliatone/go-formmodal/pkg/registry"
	"github.com/goliatone/go-formmodal/pkg/renderers/html"
)

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry enables /preview/{name}, resolving modals through reg.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithModalOptions adds options applied to every preview modal.
func WithModalOptions(options ...modal.Option) Option {
	return func(s *Server) {
		s.modalOptions = append(s.modalOptions, options...)
	}
}

// WithHostOptions adds options applied to every preview HTML host.
func WithHostOptions(options ...html.Option) Option {
	return func(s *Server) {
		s.hostOptions = append(s.hostOptions, options...)
	}
}

// Server serves one configuration directory.
type Server struct {
	dir          string
	logger       *slog.Logger
	registry     *registry.Registry
	modalOptions []modal.Option
	hostOptions  []html.Option
}

// New creates a Server for dir.
func New(dir string, options ...Option) *Server {
	s := &Server{dir: dir, logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the chi router:
//
//	GET  /healthz
//	GET  /modals/list       JSON array of configuration file names
//	GET  /modals/{file}     one configuration file
//	GET  /preview/{name}    rendered modal (needs WithRegistry)
//	POST /preview/{name}    submit a preview form
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Route("/modals", func(r chi.Router) {
		r.Get("/list", s.handleList)
		r.Get("/{file}", s.handleFile)
	})
	if s.registry != nil {
		r.Get("/preview/{name}", s.handlePreview)
		r.Post("/preview/{name}", s.handlePreview)
	}
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := registry.DirCatalog{Dir: s.dir}.List(r.Context())
	if err != nil {
		s.logger.Error("catalogserver: list failed", "dir", s.dir, "err", err)
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// handleFile serves <file> from the directory. A request for <name>.json
// with only a YAML module on disk is answered with the YAML converted to
// JSON.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if !validFile(file) {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if err == nil {
		w.Header().Set("Content-Type", contentType(file))
		_, _ = w.Write(data)
		return
	}
	if !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("catalogserver: read failed", "file", file, "err", err)
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	if strings.EqualFold(filepath.Ext(file), ".json") {
		if doc, ok := s.yamlFallback(strings.TrimSuffix(file, filepath.Ext(file))); ok {
			writeJSON(w, http.StatusOK, doc)
			return
		}
	}
	http.NotFound(w, r)
}

func (s *Server) yamlFallback(name string) (map[string]any, bool) {
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := os.ReadFile(filepath.Join(s.dir, name+ext))
		if err != nil {
			continue
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			s.logger.Warn("catalogserver: invalid YAML module", "file", name+ext, "err", err)
			return nil, false
		}
		return doc, true
	}
	return nil, false
}

// handlePreview renders the named modal. A POST replays the form against a
// freshly shown instance; a settled result is answered as JSON, otherwise
// the modal is rendered again with its validation messages.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !validName(name) {
		http.Error(w, "invalid modal name", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	host, err := html.New(append([]html.Option{
		html.WithLogger(s.logger),
		html.WithAction(r.URL.Path),
	}, s.hostOptions...)...)
	if err != nil {
		s.logger.Error("catalogserver: html host", "err", err)
		http.Error(w, "renderer unavailable", http.StatusInternalServerError)
		return
	}
	options := make([]modal.Option, 0, len(s.modalOptions)+3)
	options = append(options, modal.WithRegistry(s.registry), modal.WithLogger(s.logger))
	options = append(options, s.modalOptions...)
	m := modal.New(append(options, modal.WithHost(host))...)
	pending := m.Show(ctx, name, initData(r))

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		if err := host.Dispatch(ctx, m, r.PostForm); err != nil {
			s.logger.Warn("catalogserver: dispatch failed", "name", name, "err", err)
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if pending.Settled() {
			result, err := pending.Wait(ctx)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			writeJSON(w, http.StatusOK, result)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := host.Render(ctx, w); err != nil {
		s.logger.Error("catalogserver: render failed", "name", name, "err", err)
	}
}

// initData takes the query string as initial field values.
func initData(r *http.Request) map[string]any {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil
	}
	out := make(map[string]any, len(query))
	for key, values := range query {
		if len(values) == 1 {
			out[key] = values[0]
			continue
		}
		out[key] = append([]string(nil), values...)
	}
	return out
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("catalogserver: listening", "addr", addr, "dir", s.dir)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("catalogserver: %w", err)
	case <-ctx.Done():
		return srv.Shutdown(context.WithoutCancel(ctx))
	}
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func validFile(file string) bool {
	return validName(file) && registry.IsConfigFile(file)
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return "application/json"
	default:
		return "application/yaml"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
