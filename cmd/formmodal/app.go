package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formmodal/internal/config"
	"github.com/goliatone/go-formmodal/pkg/modal"
	"github.com/goliatone/go-formmodal/pkg/openapi"
	"github.com/goliatone/go-formmodal/pkg/registry"
	"github.com/goliatone/go-formmodal/pkg/renderers/html"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// app is the state shared by every subcommand.
type app struct {
	envFile string
	flags   struct {
		dir       string
		baseURL   string
		openapi   string
		templates string
	}

	cfg      config.Config
	logger   *slog.Logger
	widgets  *widgets.Registry
	registry *registry.Registry
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.flags.dir != "" {
		cfg.Dir = a.flags.dir
	}
	if a.flags.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(a.flags.baseURL, "/")
	}
	if a.flags.openapi != "" {
		cfg.OpenAPI = a.flags.openapi
	}
	if a.flags.templates != "" {
		cfg.Templates = a.flags.templates
	}
	a.cfg = cfg
	a.logger = cfg.Logger()
	slog.SetDefault(a.logger)

	a.widgets = widgets.NewRegistry()
	reg, err := a.buildRegistry(cmd.Context())
	if err != nil {
		return err
	}
	a.registry = reg
	return nil
}

// htmlOptions are the options every HTML host starts from. A template
// directory yields one shared engine.
func (a *app) htmlOptions() ([]html.Option, error) {
	options := []html.Option{html.WithLogger(a.logger)}
	if a.cfg.Templates == "" {
		return options, nil
	}
	engine, err := html.NewEngine(html.WithBaseDir(a.cfg.Templates))
	if err != nil {
		return nil, err
	}
	return append(options, html.WithEngine(engine)), nil
}

// buildRegistry wires sources in lookup order: local directory, remote
// catalog root, OpenAPI document. The remote catalog wins over the
// directory listing when both are configured.
func (a *app) buildRegistry(ctx context.Context) (*registry.Registry, error) {
	sources := []registry.Source{registry.DirSource{Dir: a.cfg.Dir}}
	var catalog registry.Catalog = registry.DirCatalog{Dir: a.cfg.Dir}

	if a.cfg.BaseURL != "" {
		sources = append(sources, registry.HTTPSource{BaseURL: a.cfg.BaseURL, Client: http.DefaultClient})
		catalog = registry.HTTPCatalog{URL: a.cfg.BaseURL + "/list", Client: http.DefaultClient}
	}
	if a.cfg.OpenAPI != "" {
		src, err := openapi.LoadSource(ctx, a.cfg.OpenAPI)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return registry.New(
		registry.WithSource(sources...),
		registry.WithCatalog(catalog),
		registry.WithDecorator(a.widgets),
		registry.WithLogger(a.logger),
	), nil
}

func (a *app) newModal(host modal.Host) *modal.Modal {
	return modal.New(
		modal.WithRegistry(a.registry),
		modal.WithWidgets(a.widgets),
		modal.WithHost(host),
		modal.WithLogger(a.logger),
		modal.WithHookTimeout(a.cfg.HookTimeout),
	)
}

// requireModal looks name up, failing when no source knows it.
func (a *app) requireModal(ctx context.Context, name string) error {
	if _, ok := a.registry.Get(ctx, name); !ok {
		return fmt.Errorf("formmodal: modal %q not found", name)
	}
	return nil
}

// readDocument decodes a JSON or YAML file into a map. An empty path yields
// nil.
func readDocument(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formmodal: read %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("formmodal: parse %s: invalid JSON or YAML", path)
	}
	return doc, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formmodal: encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
