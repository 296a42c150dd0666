package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formmodal/internal/loader"
)

// Module is a loaded configuration module: export name to exported value.
// Values are decoded documents (map[string]any), *model.ModalConfig or
// model.ModalConfig.
type Module map[string]any

// Source is one candidate location configuration modules are loaded from.
// Open returns an error satisfying IsNotFound when the module is absent.
type Source interface {
	Name() string
	Open(ctx context.Context, name string) (Module, error)
}

// Extensions tried, in order, by file-backed sources.
var Extensions = []string{".json", ".yaml", ".yml"}

// ErrInvalidName is returned for names that could escape a source root.
var ErrInvalidName = errors.New("registry: invalid modal name")

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// DirSource loads `<dir>/<name>.{json,yaml,yml}` from disk.
type DirSource struct {
	Dir string
}

func (s DirSource) Name() string { return "dir:" + s.Dir }

func (s DirSource) Open(ctx context.Context, name string) (Module, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	for _, ext := range Extensions {
		file := filepath.Join(s.Dir, name+ext)
		data, err := loader.File(ctx, file)
		if err != nil {
			if loader.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("registry: read %s: %w", file, err)
		}
		return Decode(data, file)
	}
	return nil, fmt.Errorf("%w: %s in %s", loader.ErrNotFound, name, s.Dir)
}

// FSSource loads `<dir>/<name>.{json,yaml,yml}` from an fs.FS, typically an
// embedded tree.
type FSSource struct {
	FS  fs.FS
	Dir string
}

func (s FSSource) Name() string { return "fs:" + s.Dir }

func (s FSSource) Open(ctx context.Context, name string) (Module, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	for _, ext := range Extensions {
		file := path.Join(dir, name+ext)
		data, err := loader.FS(ctx, s.FS, file)
		if err != nil {
			if loader.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("registry: read %s: %w", file, err)
		}
		return Decode(data, file)
	}
	return nil, fmt.Errorf("%w: %s in fs %s", loader.ErrNotFound, name, dir)
}

// HTTPSource loads `<BaseURL>/<name>.json`.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

func (s HTTPSource) Name() string { return "http:" + s.BaseURL }

func (s HTTPSource) Open(ctx context.Context, name string) (Module, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimRight(s.BaseURL, "/") + "/" + name + ".json"
	data, err := loader.HTTP(ctx, client, url, s.Timeout)
	if err != nil {
		return nil, err
	}
	return Decode(data, url)
}

// StaticSource serves modules defined in Go, keyed by modal name.
type StaticSource map[string]Module

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Open(ctx context.Context, name string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	module, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", loader.ErrNotFound, name)
	}
	return module, nil
}

// Decode parses a JSON or YAML module document. A document whose top level
// is a configuration (it has `config` or `title`) is exposed as the `default`
// export; otherwise each top-level key is an export.
func Decode(data []byte, source string) (Module, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("registry: file %s is empty", source)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = nil
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("registry: parse %s: invalid JSON or YAML", source)
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("registry: parse %s: document is not an object", source)
	}
	if looksLikeConfig(doc) {
		return Module{"default": doc}, nil
	}
	return Module(doc), nil
}
