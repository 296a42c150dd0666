package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func lookup(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := FromEnv(lookup(nil))
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	want := Config{
		Dir:         DefaultDir,
		HookTimeout: DefaultHookTimeout,
		LogLevel:    slog.LevelInfo,
		Addr:        DefaultAddr,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := FromEnv(lookup(map[string]string{
		EnvDir:         "conf",
		EnvBaseURL:     "https://cdn.example.com/modals/",
		EnvOpenAPI:     "api.yaml",
		EnvHookTimeout: "5s",
		EnvLogLevel:    "debug",
		EnvAddr:        "127.0.0.1:9000",
		EnvTemplates:   " themes/acme ",
	}))
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	want := Config{
		Dir:         "conf",
		BaseURL:     "https://cdn.example.com/modals",
		OpenAPI:     "api.yaml",
		HookTimeout: 5 * time.Second,
		LogLevel:    slog.LevelDebug,
		Addr:        "127.0.0.1:9000",
		Templates:   "themes/acme",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]string{
		"timeout syntax":   {EnvHookTimeout: "soon"},
		"timeout negative": {EnvHookTimeout: "-1s"},
		"log level":        {EnvLogLevel: "loud"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := FromEnv(lookup(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("FORMMODAL_ADDR=:7070\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvAddr, "")
	os.Unsetenv(EnvAddr)

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
}
