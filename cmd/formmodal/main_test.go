package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formmodal/pkg/testsupport"
)

func modalDir(t *testing.T) string {
	t.Helper()
	return testsupport.WriteModalDir(t, map[string]string{
		"kucun-edit.json": `{"title":"库存编辑","config":[{"field":"name","title":"名称","required":true},{"field":"qty","type":"number","value":1}]}`,
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FORMMODAL_LOG_LEVEL", "error")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "--dir", modalDir(t), "list")
	require.NoError(t, err)
	assert.Equal(t, "kucun-edit\n", out)
}

func TestShow(t *testing.T) {
	dir := modalDir(t)
	initPath := filepath.Join(t.TempDir(), "init.yaml")
	require.NoError(t, os.WriteFile(initPath, []byte("name:\n  value: Ada\nnote: extra\n"), 0o600))

	out, err := execute(t, "--dir", dir, "show", "kucun-edit", "--init", initPath)
	require.NoError(t, err)

	var got struct {
		Extra  map[string]any `json:"extra"`
		Values map[string]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]any{"note": "extra"}, got.Extra)
	assert.Equal(t, "Ada", got.Values["name"])
	assert.EqualValues(t, 1, got.Values["qty"])
}

func TestValidate(t *testing.T) {
	dir := modalDir(t)
	dataPath := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"qty": 2}`), 0o600))

	out, err := execute(t, "--dir", dir, "validate", "kucun-edit", "--data", dataPath)
	require.Error(t, err)
	assert.Contains(t, out, "名称 不能为空！")

	require.NoError(t, os.WriteFile(dataPath, []byte(`{"name":"Ada","qty":2}`), 0o600))
	out, err = execute(t, "--dir", dir, "validate", "kucun-edit", "--data", dataPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestRender(t *testing.T) {
	dir := modalDir(t)
	output := filepath.Join(t.TempDir(), "modal.html")

	_, err := execute(t, "--dir", dir, "render", "kucun-edit", "--output", output)
	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "库存编辑"))
}

func TestRender_TemplateOverride(t *testing.T) {
	dir := modalDir(t)
	templates := t.TempDir()
	tpl := `<section data-title="{{ title }}">{% for row in rows %}<i id="{{ row.field|field_id:id }}"></i>{% endfor %}</section>`
	require.NoError(t, os.WriteFile(filepath.Join(templates, "modal.tpl"), []byte(tpl), 0o600))

	out, err := execute(t, "--dir", dir, "--templates", templates, "render", "kucun-edit")
	require.NoError(t, err)
	assert.Contains(t, out, `<section data-title="库存编辑">`)
	assert.Contains(t, out, `-qty"></i>`)
	assert.NotContains(t, out, "modal-panel")

	_, err = execute(t, "--dir", dir, "--templates", filepath.Join(templates, "missing"), "render", "kucun-edit")
	require.Error(t, err)
}

func TestUnknownModal(t *testing.T) {
	_, err := execute(t, "--dir", modalDir(t), "render", "missing")
	require.Error(t, err)
}
