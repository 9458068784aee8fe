package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	pzerrors "github.com/FocuswithJustin/PoleZero/core/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
log:
  level: debug
  format: json
catalog:
  path: /var/lib/polezero/catalog.db
cache:
  ttl: 30s
workers: 3
`)
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := &Config{
		Log:     LogConfig{Level: "debug", Format: "json"},
		Catalog: CatalogConfig{Path: "/var/lib/polezero/catalog.db"},
		Cache:   CacheConfig{TTL: Duration(30 * time.Second)},
		Workers: 3,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTOMLKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "config.toml", `
workers = 2

[log]
level = "info"
`)
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want default text", cfg.Log.Format)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Catalog.Path != Default().Catalog.Path {
		t.Errorf("Catalog.Path = %q, want default", cfg.Catalog.Path)
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("optional Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("optional Load() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(path, false); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("required Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"unknown yaml key", "c.yaml", "colour: blue\n", pzerrors.ErrInvalidInput},
		{"unknown toml key", "c.toml", "colour = \"blue\"\n", pzerrors.ErrInvalidInput},
		{"bad duration", "c.yaml", "cache:\n  ttl: soon\n", pzerrors.ErrInvalidInput},
		{"bad level", "c.yaml", "log:\n  level: loud\n", pzerrors.ErrInvalidInput},
		{"zero workers", "c.toml", "workers = 0\n", pzerrors.ErrInvalidInput},
		{"unknown extension", "c.ini", "workers=1\n", pzerrors.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content), false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmptyYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "empty.yml", ""), false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != Default().Workers {
		t.Errorf("Workers = %d, want default", cfg.Workers)
	}
}

func TestFormatString(t *testing.T) {
	for f, want := range map[Format]string{FormatAuto: "auto", FormatYAML: "yaml", FormatTOML: "toml"} {
		if got := f.String(); got != want {
			t.Errorf("Format(%d).String() = %q, want %q", f, got, want)
		}
	}
}
