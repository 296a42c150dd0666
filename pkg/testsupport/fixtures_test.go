package testsupport

import (
	"io"
	"path/filepath"
	"testing"
)

func TestLoadConfig_YAMLModule(t *testing.T) {
	t.Parallel()

	dir := WriteModalDir(t, map[string]string{
		"contact.yaml": "contactModalConfig:\n  title: 联系人\n  config:\n    - field: email\n      verify: EMAIL\n",
	})
	cfg := LoadConfig(t, filepath.Join(dir, "contact.yaml"), "")
	if cfg.Title != "联系人" || len(cfg.Fields) != 1 || cfg.Fields[0].Verify.Pattern != "EMAIL" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigFromPath_Errors(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfigFromPath("", ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	dir := WriteModalDir(t, map[string]string{"list.json": `{"items":[1,2]}`})
	if _, err := LoadConfigFromPath(filepath.Join(dir, "list.json"), ""); err == nil {
		t.Fatalf("expected error for module without configuration")
	}
}

func TestCaptureOutput(t *testing.T) {
	t.Parallel()

	out, written := CaptureOutput(t, func(w io.Writer) (string, error) {
		_, err := io.WriteString(w, "<p>x</p>")
		return "<p>x</p>", err
	})
	if out != written {
		t.Fatalf("returned %q, wrote %q", out, written)
	}
}
