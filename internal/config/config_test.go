package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadClientConfig(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: http://localhost:8000
logging:
  level: debug
telemetry:
  enabled: true
  endpoint: localhost:4318
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Fatalf("url = %q", cfg.Backend.URL)
	}
	if cfg.Logging.Level != "debug" || !cfg.Telemetry.Enabled {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRequiresBackendURL(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")
	if _, err := Load(path); !errors.Is(err, ErrMissingBackendURL) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: http://localhost:8000
logging:
  level: loud
`)
	if _, err := Load(path); !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: ":8000"
  db_path: listings.db
  auth_secret: change-me
`)
	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Listen != ":8000" || cfg.Server.DBPath != "listings.db" {
		t.Fatalf("cfg = %+v", cfg.Server)
	}
}

func TestLoadServerRequiredFields(t *testing.T) {
	cases := []struct {
		content string
		want    error
	}{
		{"server:\n  db_path: x\n  auth_secret: y\n", ErrInvalidListenAddr},
		{"server:\n  listen: ':8000'\n  auth_secret: y\n", ErrMissingDBPath},
		{"server:\n  listen: ':8000'\n  db_path: x\n", ErrMissingAuthSecret},
	}
	for _, tc := range cases {
		path := writeConfig(t, tc.content)
		if _, err := LoadServer(path); !errors.Is(err, tc.want) {
			t.Fatalf("content %q: err = %v, want %v", tc.content, err, tc.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
