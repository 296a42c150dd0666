package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formmodal/internal/loader"
	"github.com/goliatone/go-formmodal/pkg/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const editJSON = `{
  "title": "库存编辑",
  "onSubmit": "save",
  "config": [
    {"field": "name", "title": "名称", "required": true},
    {"field": "qty", "title": "数量", "type": "number"}
  ]
}`

const exportsYAML = `
helpers:
  note: not a config
kucunEditModalConfig:
  title: From export
  config:
    - field: sku
      title: SKU
`

func TestExportCandidates(t *testing.T) {
	t.Parallel()

	want := []string{
		"default",
		"kucun-editModalConfig",
		"kucunEditModalConfig",
		"KucunEditModalConfig",
		"kucunEdit",
		"KucunEdit",
		"modalConfig",
		"ModalConfig",
		"config",
	}
	if diff := cmp.Diff(want, ExportCandidates("kucun-edit")); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterThenGetReturnsSamePointer(t *testing.T) {
	t.Parallel()

	reg := New(WithLogger(quietLogger()))
	cfg := &model.ModalConfig{Title: "Inline"}
	reg.Register("inline", cfg)

	got, ok := reg.Get(context.Background(), "inline")
	require.True(t, ok)
	assert.Same(t, cfg, got)
	assert.True(t, reg.Has("inline"))
}

func TestGet_LoadsFromFSAndCaches(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"modals/edit.json":       {Data: []byte(editJSON)},
		"modals/kucun-edit.yaml": {Data: []byte(exportsYAML)},
	}
	saved := false
	reg := New(
		WithLogger(quietLogger()),
		WithSource(FSSource{FS: files, Dir: "modals"}),
		WithHooks(model.Hooks{Submit: map[string]model.SubmitFunc{
			"save": func(context.Context, map[string]any) (any, error) {
				saved = true
				return nil, nil
			},
		}}),
	)

	cfg, ok := reg.Get(context.Background(), "edit")
	require.True(t, ok)
	assert.Equal(t, "库存编辑", cfg.Title)
	require.Len(t, cfg.Fields, 2)
	assert.Equal(t, model.FieldTypeNumber, cfg.Fields[1].Type)
	require.NotNil(t, cfg.OnSubmit, "submit hook should be bound")
	_, _ = cfg.OnSubmit(context.Background(), nil)
	assert.True(t, saved)

	again, ok := reg.Get(context.Background(), "edit")
	require.True(t, ok)
	assert.Same(t, cfg, again)

	named, ok := reg.Get(context.Background(), "kucun-edit")
	require.True(t, ok)
	assert.Equal(t, "From export", named.Title)
}

func TestGet_StructuralScanAndOrderedSources(t *testing.T) {
	t.Parallel()

	var opened []string
	first := recordingSource{name: "first", opened: &opened}
	second := StaticSource{
		"picker": Module{
			"helpers":  map[string]any{"x": 1},
			"whatever": &model.ModalConfig{Title: "Picker"},
		},
	}
	reg := New(WithLogger(quietLogger()), WithSource(first, second))

	cfg, ok := reg.Get(context.Background(), "picker")
	require.True(t, ok)
	assert.Equal(t, "Picker", cfg.Title)
	assert.Equal(t, []string{"first:picker"}, opened)
}

func TestGet_MissIsAbsentNotError(t *testing.T) {
	t.Parallel()

	reg := New(
		WithLogger(quietLogger()),
		WithCatalog(StaticCatalog{"edit.json"}),
		WithSource(StaticSource{}),
	)
	cfg, ok := reg.Get(context.Background(), "edti")
	assert.False(t, ok)
	assert.Nil(t, cfg)

	_, ok = reg.Get(context.Background(), "../etc/passwd")
	assert.False(t, ok)
}

func TestGet_ConcurrentLoadsOpenOnce(t *testing.T) {
	t.Parallel()

	var opens atomic.Int32
	src := countingSource{opens: &opens, delay: 20 * time.Millisecond}
	reg := New(WithLogger(quietLogger()), WithSource(src))

	var wg sync.WaitGroup
	results := make([]*model.ModalConfig, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = reg.Get(context.Background(), "shared")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), opens.Load())
	for _, cfg := range results {
		assert.Same(t, results[0], cfg)
	}
}

func TestGet_HTTPSourceAndCatalog(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/modals/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["edit.json", "other.yaml"]`))
	})
	mux.HandleFunc("/modals/edit.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(editJSON))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	reg := New(
		WithLogger(quietLogger()),
		WithCatalog(HTTPCatalog{URL: server.URL + "/modals/list", Client: server.Client()}),
		WithSource(HTTPSource{BaseURL: server.URL + "/modals", Client: server.Client(), Timeout: time.Second}),
	)

	cfg, ok := reg.Get(context.Background(), "edit")
	require.True(t, ok)
	assert.Equal(t, "库存编辑", cfg.Title)

	_, ok = reg.Get(context.Background(), "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"edit", "other"}, reg.Names(context.Background()))
}

func TestGet_CatalogFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	reg := New(
		WithLogger(quietLogger()),
		WithCatalog(failingCatalog{}),
		WithSource(StaticSource{"edit": Module{"default": map[string]any{"title": "ok"}}}),
	)
	cfg, ok := reg.Get(context.Background(), "edit")
	require.True(t, ok)
	assert.Equal(t, "ok", cfg.Title)
}

func TestDecode_JSONAndYAML(t *testing.T) {
	t.Parallel()

	module, err := Decode([]byte(editJSON), "edit.json")
	require.NoError(t, err)
	assert.Contains(t, module, "default")

	module, err = Decode([]byte(exportsYAML), "kucun-edit.yaml")
	require.NoError(t, err)
	assert.Contains(t, module, "kucunEditModalConfig")

	_, err = Decode([]byte("  "), "empty.json")
	assert.Error(t, err)
	_, err = Decode([]byte("- a\n- b\n"), "list.yaml")
	assert.Error(t, err)
}

func TestDirSourceAndWatchInvalidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "edit.json")
	require.NoError(t, os.WriteFile(file, []byte(editJSON), 0o600))

	reg := New(WithLogger(quietLogger()), WithSource(DirSource{Dir: dir}), WithCatalog(DirCatalog{Dir: dir}))
	_, ok := reg.Get(context.Background(), "edit")
	require.True(t, ok)
	assert.Equal(t, []string{"edit"}, reg.Names(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- reg.Watch(ctx, dir) }()

	deadline := time.Now().Add(3 * time.Second)
	for reg.Has("edit") && time.Now().Before(deadline) {
		require.NoError(t, os.WriteFile(file, []byte(editJSON), 0o600))
		time.Sleep(50 * time.Millisecond)
	}
	assert.False(t, reg.Has("edit"), "write should invalidate the cached entry")

	cancel()
	require.NoError(t, <-done)
}

type recordingSource struct {
	name   string
	opened *[]string
}

func (s recordingSource) Name() string { return s.name }

func (s recordingSource) Open(_ context.Context, name string) (Module, error) {
	*s.opened = append(*s.opened, s.name+":"+name)
	return nil, loader.ErrNotFound
}

type countingSource struct {
	opens *atomic.Int32
	delay time.Duration
}

func (s countingSource) Name() string { return "counting" }

func (s countingSource) Open(ctx context.Context, name string) (Module, error) {
	s.opens.Add(1)
	time.Sleep(s.delay)
	return Module{"default": &model.ModalConfig{Title: name}}, nil
}

type failingCatalog struct{}

func (failingCatalog) List(context.Context) ([]string, error) {
	return nil, errors.New("catalog down")
}
