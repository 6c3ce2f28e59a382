package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories and files the tool works against.
type Paths struct {
	SourceRoot    string `toml:"source_root"`
	Document      string `toml:"document"`
	ThumbnailRoot string `toml:"thumbnail_root"`
	StateDir      string `toml:"state_dir"`
	LogDir        string `toml:"log_dir"`
}

// Thumbnails contains configuration for derived thumbnail generation.
type Thumbnails struct {
	Sizes           []int  `toml:"sizes"`
	Workers         int    `toml:"workers"`
	Compression     string `toml:"compression"`
	MetricsTextfile string `toml:"metrics_textfile"`
}

// Preview contains configuration for the in-memory preview cache.
type Preview struct {
	CacheEntries int `toml:"cache_entries"`
}

// Watch contains configuration for the source-root watcher.
type Watch struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for spritedeck.
//
// Configuration sections by subsystem:
//   - Paths: source images, catalog document, thumbnails, state and logs
//   - Thumbnails: sizes, batch workers, PNG compression, metrics textfile
//   - Preview: preview cache capacity
//   - Watch: debounce window for `thumbs watch`
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Thumbnails Thumbnails `toml:"thumbnails"`
	Preview    Preview    `toml:"preview"`
	Watch      Watch      `toml:"watch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strings.TrimSpace(strict.String()))
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ThumbnailRootFor returns the configured thumbnail root, or <sourceRoot>/blocks
// when none is configured.
func (c *Config) ThumbnailRootFor(sourceRoot string) string {
	if c != nil && c.Paths.ThumbnailRoot != "" {
		return c.Paths.ThumbnailRoot
	}
	if strings.TrimSpace(sourceRoot) == "" {
		return ""
	}
	return filepath.Join(sourceRoot, defaultThumbnailSubdir)
}

// SettingsPath is the SQLite database backing persisted host settings.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Paths.StateDir, "settings.db")
}

// WatchLockPath guards the single `thumbs watch` instance per state directory.
func (c *Config) WatchLockPath() string {
	return filepath.Join(c.Paths.StateDir, "watch.lock")
}

// DebounceInterval converts watch.debounce_ms into a duration.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
