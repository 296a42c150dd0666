package registry

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formmodal/internal/loader"
)

// Catalog lists the modal files a deployment publishes. Entries are file
// names such as "kucun-edit.json"; bare names are accepted too.
type Catalog interface {
	List(ctx context.Context) ([]string, error)
}

// DirCatalog lists configuration files in a local directory.
type DirCatalog struct {
	Dir string
}

func (c DirCatalog) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("registry: list %s: %w", c.Dir, err)
	}
	return configFiles(entries), nil
}

// FSCatalog lists configuration files in an fs.FS directory.
type FSCatalog struct {
	FS  fs.FS
	Dir string
}

func (c FSCatalog) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(c.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("registry: list fs %s: %w", dir, err)
	}
	return configFiles(entries), nil
}

// HTTPCatalog fetches a JSON array of file names.
type HTTPCatalog struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func (c HTTPCatalog) List(ctx context.Context) ([]string, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	data, err := loader.HTTP(ctx, client, c.URL, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("registry: fetch catalog: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("registry: decode catalog: %w", err)
	}
	return names, nil
}

// StaticCatalog is a fixed list.
type StaticCatalog []string

func (c StaticCatalog) List(context.Context) ([]string, error) {
	return append([]string(nil), c...), nil
}

// ModalName strips a configuration file extension from a catalog entry.
func ModalName(entry string) string {
	entry = strings.TrimSpace(entry)
	ext := filepath.Ext(entry)
	if IsConfigFile(entry) {
		return strings.TrimSuffix(entry, ext)
	}
	return entry
}

// IsConfigFile reports whether path has a configuration extension.
func IsConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func configFiles(entries []fs.DirEntry) []string {
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !IsConfigFile(entry.Name()) {
			continue
		}
		out = append(out, entry.Name())
	}
	sort.Strings(out)
	return out
}
