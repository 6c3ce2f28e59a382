package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"spritedeck/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.EnvSourceRoot, "")
	t.Setenv(config.EnvDocument, "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "spritedeck")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !slices.Equal(cfg.Thumbnails.Sizes, []int{32, 64, 128, 256}) {
		t.Fatalf("unexpected default sizes: %v", cfg.Thumbnails.Sizes)
	}
	if cfg.Thumbnails.Workers != 1 {
		t.Fatalf("unexpected default workers: %d", cfg.Thumbnails.Workers)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.DebounceInterval() != 500*time.Millisecond {
		t.Fatalf("unexpected debounce: %s", cfg.DebounceInterval())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "spritedeck.toml")
	t.Setenv(config.EnvSourceRoot, "")

	type payload struct {
		Paths struct {
			SourceRoot string `toml:"source_root"`
		} `toml:"paths"`
		Thumbnails struct {
			Sizes   []int `toml:"sizes"`
			Workers int   `toml:"workers"`
		} `toml:"thumbnails"`
	}
	custom := payload{}
	custom.Paths.SourceRoot = filepath.Join(tempDir, "sprites")
	custom.Thumbnails.Sizes = []int{64, 16}
	custom.Thumbnails.Workers = 4
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.SourceRoot != custom.Paths.SourceRoot {
		t.Fatalf("source root = %q", cfg.Paths.SourceRoot)
	}
	if !slices.Equal(cfg.Thumbnails.Sizes, []int{64, 16}) {
		t.Fatalf("sizes must keep file order, got %v", cfg.Thumbnails.Sizes)
	}
	if cfg.Thumbnails.Workers != 4 {
		t.Fatalf("workers = %d", cfg.Thumbnails.Workers)
	}
	if got, want := cfg.ThumbnailRootFor(cfg.Paths.SourceRoot), filepath.Join(custom.Paths.SourceRoot, "blocks"); got != want {
		t.Fatalf("ThumbnailRootFor = %q, want %q", got, want)
	}
}

func TestEnvFallbackOnlyWhenFileBlank(t *testing.T) {
	tempDir := t.TempDir()
	envRoot := filepath.Join(tempDir, "env-root")
	t.Setenv(config.EnvSourceRoot, envRoot)
	t.Setenv(config.EnvDocument, filepath.Join(tempDir, "env.json"))

	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.SourceRoot != envRoot {
		t.Fatalf("expected env source root, got %q", cfg.Paths.SourceRoot)
	}

	configPath := filepath.Join(tempDir, "file.toml")
	fileRoot := filepath.Join(tempDir, "file-root")
	content := "[paths]\nsource_root = \"" + filepath.ToSlash(fileRoot) + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.SourceRoot != fileRoot {
		t.Fatalf("file value must win over env, got %q", cfg.Paths.SourceRoot)
	}
	if cfg.Paths.Document != filepath.Join(tempDir, "env.json") {
		t.Fatalf("blank document should fall back to env, got %q", cfg.Paths.Document)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"zero size", func(c *config.Config) { c.Thumbnails.Sizes = []int{0} }, "thumbnails.sizes"},
		{"duplicate size", func(c *config.Config) { c.Thumbnails.Sizes = []int{32, 32} }, "more than once"},
		{"no workers", func(c *config.Config) { c.Thumbnails.Workers = 0 }, "thumbnails.workers"},
		{"compression", func(c *config.Config) { c.Thumbnails.Compression = "max" }, "thumbnails.compression"},
		{"cache", func(c *config.Config) { c.Preview.CacheEntries = 0 }, "preview.cache_entries"},
		{"debounce", func(c *config.Config) { c.Watch.DebounceMS = -1 }, "watch.debounce_ms"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nsprite_folder = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config must load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Preview.CacheEntries != 256 {
		t.Fatalf("cache entries = %d", cfg.Preview.CacheEntries)
	}
}
