package catalogserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formmodal/pkg/registry"
	"github.com/goliatone/go-formmodal/pkg/testsupport"
)

var quiet = testsupport.Quiet

func writeModals(t *testing.T) string {
	t.Helper()
	return testsupport.WriteModalDir(t, map[string]string{
		"kucun-edit.json": `{"title":"库存编辑","config":[{"field":"name","title":"名称","required":true}]}`,
		"contact.yaml":    "title: 联系人\nconfig:\n  - field: email\n    verify: EMAIL\n",
		"notes.txt":       "ignored",
	})
}

func newTestServer(t *testing.T, options ...Option) (*httptest.Server, string) {
	t.Helper()
	dir := writeModals(t)
	srv := New(dir, append([]Option{WithLogger(quiet())}, options...)...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, dir
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_ListsConfigFiles(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	status, body := get(t, ts.URL+"/modals/list")
	require.Equal(t, http.StatusOK, status)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(body), &names))
	assert.Equal(t, []string{"contact.yaml", "kucun-edit.json"}, names)
}

func TestServer_ServesFiles(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)

	status, body := get(t, ts.URL+"/modals/kucun-edit.json")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "库存编辑")

	status, body = get(t, ts.URL+"/modals/contact.json")
	assert.Equal(t, http.StatusOK, status, "YAML module should be served as JSON")
	assert.Contains(t, body, `"title":"联系人"`)

	status, _ = get(t, ts.URL+"/modals/missing.json")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, ts.URL+"/modals/notes.txt")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	status, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, body)
}

func TestServer_BacksHTTPSourceAndCatalog(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	reg := registry.New(
		registry.WithLogger(quiet()),
		registry.WithSource(registry.HTTPSource{BaseURL: ts.URL + "/modals", Timeout: time.Second}),
		registry.WithCatalog(registry.HTTPCatalog{URL: ts.URL + "/modals/list", Timeout: time.Second}),
	)
	ctx := context.Background()

	cfg, ok := reg.Get(ctx, "contact")
	require.True(t, ok)
	assert.Equal(t, "联系人", cfg.Title)
	assert.Equal(t, "EMAIL", cfg.Fields[0].Verify.Pattern)
	assert.ElementsMatch(t, []string{"contact", "kucun-edit"}, reg.Names(ctx))
}

func TestServer_PreviewRendersAndSubmits(t *testing.T) {
	t.Parallel()

	dir := writeModals(t)
	reg := registry.New(
		registry.WithLogger(quiet()),
		registry.WithSource(registry.DirSource{Dir: dir}),
	)
	ts := httptest.NewServer(New(dir, WithLogger(quiet()), WithRegistry(reg)).Handler())
	t.Cleanup(ts.Close)

	status, body := get(t, ts.URL+"/preview/kucun-edit?name=Ada")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "库存编辑")
	assert.Contains(t, body, `value="Ada"`)

	resp, err := http.PostForm(ts.URL+"/preview/kucun-edit", url.Values{"_action": {"submit"}})
	require.NoError(t, err)
	invalid, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(invalid), "名称 不能为空！")

	resp, err = http.PostForm(ts.URL+"/preview/kucun-edit", url.Values{"name": {"Ada"}, "_action": {"submit"}})
	require.NoError(t, err)
	submitted, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"action":"submit","data":{"name":"Ada"}}`, string(submitted))
}

func TestServer_RejectsTraversal(t *testing.T) {
	t.Parallel()

	assert.False(t, validName(".."))
	assert.False(t, validName(`a\b`))
	assert.False(t, validFile("a.txt"))
	assert.True(t, validFile("a.yml"))
	assert.True(t, strings.HasPrefix(contentType("a.yml"), "application/yaml"))
}
