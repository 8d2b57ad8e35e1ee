package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
library:
  dir: /srv/tiles
  index_path: /var/lib/mosaic/index.csv
  quarantine_dir: /var/lib/mosaic/quarantine
workers: 3
cache:
  capacity: 1024
job_timeout: 45s
max_canvas_pixels: 1000000
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Library.Dir != "/srv/tiles" {
		t.Errorf("Library.Dir: got %s", cfg.Library.Dir)
	}
	if cfg.Library.IndexPath != "/var/lib/mosaic/index.csv" {
		t.Errorf("Library.IndexPath: got %s", cfg.Library.IndexPath)
	}
	if cfg.Library.QuarantineDir != "/var/lib/mosaic/quarantine" {
		t.Errorf("Library.QuarantineDir: got %s", cfg.Library.QuarantineDir)
	}
	if cfg.Workers != 3 || cfg.WorkerCount() != 3 {
		t.Errorf("Workers: got %d", cfg.Workers)
	}
	if cfg.Cache.Capacity != 1024 {
		t.Errorf("Cache.Capacity: got %d", cfg.Cache.Capacity)
	}
	if cfg.JobTimeout != 45*time.Second {
		t.Errorf("JobTimeout: got %s", cfg.JobTimeout)
	}
	if cfg.MaxCanvasPixels != 1000000 {
		t.Errorf("MaxCanvasPixels: got %d", cfg.MaxCanvasPixels)
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Errorf("Level: got %s", cfg.Level())
	}
	// Not in the file: keeps the default.
	if len(cfg.Library.Extensions) != len(Default().Library.Extensions) {
		t.Errorf("Extensions should keep defaults, got %v", cfg.Library.Extensions)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative workers", "workers: -1\n", "workers"},
		{"negative capacity", "cache:\n  capacity: -5\n", "cache.capacity"},
		{"negative canvas limit", "max_canvas_pixels: -1\n", "max_canvas_pixels"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"empty index path", "library:\n  index_path: \"\"\n", "index_path"},
		{"bad yaml", "workers: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve without file: %v", err)
	}
	if cfg.Library.IndexPath != Default().Library.IndexPath {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	path := writeConfig(t, "workers: 2\n")
	t.Setenv(EnvConfigPath, path)
	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve from env: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers from env file: got %d, want 2", cfg.Workers)
	}

	flagPath := writeConfig(t, "workers: 5\n")
	cfg, err = Resolve(flagPath)
	if err != nil {
		t.Fatalf("Resolve from flag: %v", err)
	}
	if cfg.Workers != 5 {
		t.Errorf("flag should win over env, got %d", cfg.Workers)
	}

	t.Setenv(EnvLogLevel, "warn")
	cfg, err = Resolve(flagPath)
	if err != nil {
		t.Fatalf("Resolve with level override: %v", err)
	}
	if cfg.Level() != logrus.WarnLevel {
		t.Errorf("Level: got %s, want warn", cfg.Level())
	}
}

func TestWorkerCount_Default(t *testing.T) {
	if got := Default().WorkerCount(); got != runtime.NumCPU() {
		t.Errorf("WorkerCount: got %d, want %d", got, runtime.NumCPU())
	}
}
